package parser

import (
	"regexp"
	"strings"

	"farerules/internal/domain"
)

type carrierMatcher struct {
	code    domain.Carrier
	phrases []string
	tokens  []*regexp.Regexp
}

func (m carrierMatcher) match(upper string) bool {
	for _, p := range m.phrases {
		if strings.Contains(upper, p) {
			return true
		}
	}
	for _, re := range m.tokens {
		if re.MatchString(upper) {
			return true
		}
	}
	return false
}

// DetectCarrier returns the carrier whose markers appear in the document.
// Markers are checked in table order and a later match overrides an earlier
// one, so a document naming both PX and CG is CG.
func (p *Parser) DetectCarrier(t Text) domain.Carrier {
	carrier := domain.CarrierUnknown
	for _, m := range p.carriers {
		if m.match(t.Upper) {
			carrier = m.code
		}
	}
	return carrier
}

// DetectCurrency returns the first configured currency code found as a word,
// or the default currency.
func (p *Parser) DetectCurrency(t Text) string {
	if p.currencyRe != nil {
		if m := p.currencyRe.FindStringSubmatch(t.Upper); m != nil {
			return m[1]
		}
	}
	return p.tables.DefaultCurrency
}
