// Package parser turns the plain text of PX and CG ticket documents into a
// domain.ParsedTicket. Every heuristic degrades to a sentinel (UNK carrier,
// UNK-UNK route, zero amounts) instead of failing.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"farerules/internal/domain"
	"farerules/internal/tables"
)

// Parser extracts ticket fields using a fixed set of tables. It is safe for
// concurrent use.
type Parser struct {
	tables        *tables.Tables
	carriers      []carrierMatcher
	currencyRe    *regexp.Regexp
	currencies    map[string]bool
	codes         map[string]codePatterns
	aliases       map[string]codePatterns
	routeMatchers []namedMatcher
}

// New compiles the patterns for t.
func New(t *tables.Tables) *Parser {
	p := &Parser{
		tables:     t,
		currencies: map[string]bool{t.DefaultCurrency: true},
		codes:      make(map[string]codePatterns, len(t.TaxCodes)),
		aliases:    make(map[string]codePatterns, len(t.XTAliases)),
	}

	for _, cm := range t.Carriers {
		m := carrierMatcher{code: domain.Carrier(cm.Code), phrases: cm.Phrases}
		for _, tok := range cm.Tokens {
			m.tokens = append(m.tokens, regexp.MustCompile(`\b`+regexp.QuoteMeta(tok)+`\b`))
		}
		p.carriers = append(p.carriers, m)
	}

	if len(t.Currencies) > 0 {
		quoted := make([]string, len(t.Currencies))
		for i, c := range t.Currencies {
			quoted[i] = regexp.QuoteMeta(c)
			p.currencies[c] = true
		}
		p.currencyRe = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}

	for _, code := range t.TaxCodes {
		p.codes[code] = compileCodePatterns(code, t.DefaultCurrency)
	}
	for _, alias := range t.XTAliases {
		p.aliases[alias] = compileCodePatterns(alias, t.DefaultCurrency)
	}

	p.routeMatchers = p.defaultRouteMatchers()
	return p
}

func (p *Parser) isCurrency(code string) bool {
	return p.currencies[code]
}

// Diagnostics describes how a ticket was parsed.
type Diagnostics struct {
	Lines         int      `json:"lines"`
	RouteStrategy string   `json:"route_strategy,omitempty"`
	ObservedCodes []string `json:"observed_codes"`
	BaseDerived   bool     `json:"base_derived"`
}

// Parse extracts a ParsedTicket from raw document text.
func (p *Parser) Parse(raw string) domain.ParsedTicket {
	ticket, _ := p.ParseWithDiagnostics(raw)
	return ticket
}

// ParseWithDiagnostics is Parse plus a record of which strategies fired.
func (p *Parser) ParseWithDiagnostics(raw string) (domain.ParsedTicket, Diagnostics) {
	t := Normalize(raw)
	route, strategy := p.resolveRoute(t)

	components := p.ExtractTaxes(t)
	components.Base = p.ExtractBaseFare(t)
	total := p.ExtractTotal(t)

	derived := false
	if base := components.BaseAmount(); base.IsZero() {
		taxSum := components.TaxSum()
		if taxSum.IsPositive() && total.GreaterThan(taxSum) {
			components.Base = decimal.NewNullDecimal(domain.Money(total.Sub(taxSum)))
			derived = true
		}
	}

	ticket := domain.ParsedTicket{
		Carrier:    p.DetectCarrier(t),
		Route:      route,
		Currency:   p.DetectCurrency(t),
		Components: components,
		Total:      domain.Money(total),
	}
	return ticket, Diagnostics{
		Lines:         len(t.Lines),
		RouteStrategy: strategy,
		ObservedCodes: components.ObservedCodes(),
		BaseDerived:   derived,
	}
}
