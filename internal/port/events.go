package port

import (
	"context"

	"farerules/internal/domain"
)

// EventPublisher announces rule changes to downstream consumers.
type EventPublisher interface {
	PublishRuleUpdated(ctx context.Context, event domain.RuleUpdatedEvent) error
	Close() error
}
