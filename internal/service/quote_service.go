package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"farerules/internal/domain"
	"farerules/internal/port"
)

var hundred = decimal.NewFromInt(100)

// QuoteInput is the DTO for fare quote requests. Empty Currency and POS and a
// null MarkupPct fall back to the configured defaults.
type QuoteInput struct {
	Carrier   string
	Origin    string
	Dest      string
	BaseFare  decimal.Decimal
	Currency  string
	POS       string
	MarkupPct decimal.NullDecimal
}

// QuoteDefaults are applied to fields a request leaves out.
type QuoteDefaults struct {
	Currency  string
	POS       string
	MarkupPct decimal.Decimal
}

// QuoteService defines the fare quote contract.
type QuoteService interface {
	Quote(ctx context.Context, input QuoteInput) (*domain.FareQuote, error)
}

type quoteService struct {
	store    port.RuleStore
	defaults QuoteDefaults
}

// NewQuoteService creates a new QuoteService implementation.
func NewQuoteService(store port.RuleStore, defaults QuoteDefaults) QuoteService {
	return &quoteService{store: store, defaults: defaults}
}

func (s *quoteService) Quote(ctx context.Context, input QuoteInput) (*domain.FareQuote, error) {
	carrier := strings.ToUpper(strings.TrimSpace(input.Carrier))
	origin := strings.ToUpper(strings.TrimSpace(input.Origin))
	dest := strings.ToUpper(strings.TrimSpace(input.Dest))

	for _, f := range []struct{ name, value string }{
		{"carrier", carrier}, {"origin", origin}, {"dest", dest},
	} {
		if f.value == "" {
			return nil, &domain.MissingFieldError{Field: f.name}
		}
	}
	if input.BaseFare.IsNegative() {
		return nil, fmt.Errorf("%w: base_fare must not be negative", domain.ErrInvalidQuote)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.defaults.Currency
	}
	pos := strings.ToUpper(strings.TrimSpace(input.POS))
	if pos == "" {
		pos = s.defaults.POS
	}
	markup := s.defaults.MarkupPct
	if input.MarkupPct.Valid {
		markup = input.MarkupPct.Decimal
	}
	if markup.IsNegative() {
		return nil, fmt.Errorf("%w: markup_pct must not be negative", domain.ErrInvalidQuote)
	}

	key := domain.NewRuleKey(carrier, origin, dest, pos, currency)
	matched, rec, err := s.store.Lookup(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("looking up rule %s: %w", key, err)
	}

	yqyr, xt, gc, i9 := rec.Offsets()
	components := domain.QuoteComponents{Base: domain.Money(input.BaseFare), YQYR: yqyr, XT: xt, GC: gc, I9: i9}
	selling := domain.Money(components.Sum())
	final := domain.Money(selling.Mul(decimal.NewFromInt(1).Add(markup.Div(hundred))))

	quote := &domain.FareQuote{
		Components:           components,
		SellingPlatformTotal: selling,
		MarkupPct:            markup,
		FinalTotal:           final,
		Currency:             currency,
		POS:                  pos,
		Carrier:              carrier,
		Route:                key.Route,
	}
	if matched != "" {
		quote.RuleKey = &matched
	}
	return quote, nil
}
