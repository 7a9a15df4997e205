package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"farerules/internal/domain"
)

// codePatterns holds the per-code regexes for both amount orderings.
type codePatterns struct {
	word        *regexp.Regexp // the code as a standalone word
	codeFirst   *regexp.Regexp // "XT 10.00", "XT: 10.00"
	amountFirst *regexp.Regexp // "22.80GC", "PGK 22.80 GC"
}

func compileCodePatterns(code, currency string) codePatterns {
	q := regexp.QuoteMeta(code)
	cur := regexp.QuoteMeta(currency)
	return codePatterns{
		word:        regexp.MustCompile(`\b` + q + `\b`),
		codeFirst:   regexp.MustCompile(`\b` + q + `\b[:\s]+(` + amountPattern + `)`),
		amountFirst: regexp.MustCompile(`(?:` + cur + `\s*)?(` + amountPattern + `)\s*` + q + `\b`),
	}
}

func submatchAmount(re *regexp.Regexp, s string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmount(m[1]), true
}

func raise(c *domain.TaxComponents, code string, v decimal.Decimal) {
	cur := c.Taxes[code]
	if !cur.Valid || v.GreaterThan(cur.Decimal) {
		c.Taxes[code] = decimal.NewNullDecimal(v)
	}
}

// ExtractTaxes finds the configured tax codes and folds alias codes into XT.
func (p *Parser) ExtractTaxes(t Text) domain.TaxComponents {
	c := domain.NewTaxComponents(p.tables.TaxCodes)
	p.scanTaxLine(t, &c)
	p.scanLines(t, &c)
	p.foldAliases(t, &c)
	return c
}

// scanTaxLine reads the first line mentioning TAX, where tickets usually print
// every code on one compact line.
func (p *Parser) scanTaxLine(t Text, c *domain.TaxComponents) {
	var taxLine string
	for _, line := range t.Lines {
		if strings.Contains(line, "TAX") {
			taxLine = line
			break
		}
	}
	if taxLine == "" {
		return
	}
	for _, code := range c.Codes {
		pat := p.codes[code]
		if v, ok := submatchAmount(pat.codeFirst, taxLine); ok {
			raise(c, code, v)
		}
		if v, ok := submatchAmount(pat.amountFirst, taxLine); ok {
			raise(c, code, v)
		}
	}
}

// scanLines fills codes still at zero from codes spread over the document. A
// code on its own line takes the first amount there or on the next line.
func (p *Parser) scanLines(t Text, c *domain.TaxComponents) {
	for i, line := range t.Lines {
		for _, code := range c.Codes {
			if c.Amount(code).IsPositive() {
				continue
			}
			pat := p.codes[code]
			if !pat.word.MatchString(line) {
				if v, ok := submatchAmount(pat.amountFirst, line); ok {
					raise(c, code, v)
				}
				continue
			}
			if v, ok := firstAmount(line); ok {
				c.Taxes[code] = decimal.NewNullDecimal(v)
			} else if i+1 < len(t.Lines) {
				if v, ok := firstAmount(t.Lines[i+1]); ok {
					c.Taxes[code] = decimal.NewNullDecimal(v)
				}
			}
		}
	}
}

// foldAliases adds the first amount printed against each alias code to XT.
// Some ticket variants print the XT surcharge under these labels.
func (p *Parser) foldAliases(t Text, c *domain.TaxComponents) {
	for _, alias := range p.tables.XTAliases {
		pat := p.aliases[alias]
		for _, line := range t.Lines {
			v, ok := submatchAmount(pat.codeFirst, line)
			if !ok {
				v, ok = submatchAmount(pat.amountFirst, line)
			}
			if ok {
				c.Taxes[domain.TaxXT] = decimal.NewNullDecimal(domain.Money(c.Amount(domain.TaxXT).Add(v)))
				break
			}
		}
	}
}
