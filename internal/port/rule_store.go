package port

import (
	"context"

	"farerules/internal/domain"
)

// RuleStore is the rule base consumed by the ingest and quote services.
type RuleStore interface {
	Upsert(ctx context.Context, ticket domain.ParsedTicket, pos string) (domain.RuleKey, domain.RuleRecord, error)
	// Lookup tries key and then its reversed route. The returned key string is
	// empty when no rule matched; that is not an error.
	Lookup(ctx context.Context, key domain.RuleKey) (string, domain.RuleRecord, error)
	All(ctx context.Context) (domain.RuleSet, error)
	Import(ctx context.Context, set domain.RuleSet) (int, error)
	Ping(ctx context.Context) error
}
