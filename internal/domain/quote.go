package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// QuoteComponents breaks a selling-platform total into its parts.
type QuoteComponents struct {
	Base decimal.Decimal
	YQYR decimal.Decimal
	XT   decimal.Decimal
	GC   decimal.Decimal
	I9   decimal.Decimal
}

// Sum returns base plus every offset.
func (c QuoteComponents) Sum() decimal.Decimal {
	return c.Base.Add(c.YQYR).Add(c.XT).Add(c.GC).Add(c.I9)
}

// MarshalJSON writes every component as a JSON number.
func (c QuoteComponents) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64{
		"base": c.Base.InexactFloat64(),
		"yqyr": c.YQYR.InexactFloat64(),
		"xt":   c.XT.InexactFloat64(),
		"gc":   c.GC.InexactFloat64(),
		"i9":   c.I9.InexactFloat64(),
	})
}

// FareQuote is a re-derived fare for one carrier/route/POS/currency. RuleKey is
// nil when no stored rule matched and all offsets defaulted to zero.
type FareQuote struct {
	RuleKey              *string
	Components           QuoteComponents
	SellingPlatformTotal decimal.Decimal
	MarkupPct            decimal.Decimal
	FinalTotal           decimal.Decimal
	Currency             string
	POS                  string
	Carrier              string
	Route                string
}

// Matched reports whether a stored rule was applied.
func (q FareQuote) Matched() bool {
	return q.RuleKey != nil
}

// MarshalJSON renders amounts as numbers and a missing rule key as null.
func (q FareQuote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RuleKey              *string         `json:"rule_key"`
		Components           QuoteComponents `json:"components"`
		SellingPlatformTotal float64         `json:"selling_platform_total"`
		MarkupPct            float64         `json:"markup_pct"`
		FinalTotal           float64         `json:"final_total"`
		Currency             string          `json:"currency"`
		POS                  string          `json:"pos"`
		Carrier              string          `json:"carrier"`
		Route                string          `json:"route"`
	}{
		RuleKey:              q.RuleKey,
		Components:           q.Components,
		SellingPlatformTotal: q.SellingPlatformTotal.InexactFloat64(),
		MarkupPct:            q.MarkupPct.InexactFloat64(),
		FinalTotal:           q.FinalTotal.InexactFloat64(),
		Currency:             q.Currency,
		POS:                  q.POS,
		Carrier:              q.Carrier,
		Route:                q.Route,
	})
}

// IngestResult is returned for every ingested ticket document.
type IngestResult struct {
	Parsed      ParsedTicket `json:"parsed"`
	RuleKey     *string      `json:"rule_key"`
	UpdatedRule RuleRecord   `json:"updated_rule"`
}

// RuleUpdatedEvent is published after a rule record changes.
type RuleUpdatedEvent struct {
	RuleKey  string     `json:"rule_key"`
	Record   RuleRecord `json:"record"`
	Carrier  Carrier    `json:"carrier"`
	Route    string     `json:"route"`
	Observed []string   `json:"observed_codes"`
	Source   string     `json:"source,omitempty"`
}
