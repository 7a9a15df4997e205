package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches money as printed on tickets: 1,234.56 or 22.80.
const amountPattern = `[0-9]{1,3}(?:,[0-9]{3})*\.[0-9]{2}`

var (
	reAmount    = regexp.MustCompile(amountPattern)
	reFareLabel = regexp.MustCompile(`\b(AIR\s*FARE|FARE)\b`)
	reTotal     = regexp.MustCompile(`\b(GRAND\s+TOTAL|TOTAL\s+AMOUNT|TOTAL\s+FARE|TOTAL)\b`)
)

// parseAmount converts a matched amount; anything unparsable is zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstAmount(line string) (decimal.Decimal, bool) {
	m := reAmount.FindString(line)
	if m == "" {
		return decimal.Zero, false
	}
	return parseAmount(m), true
}

// ExtractBaseFare returns the largest amount on any BASE FARE or FARE line.
func (p *Parser) ExtractBaseFare(t Text) decimal.NullDecimal {
	var base decimal.NullDecimal
	for _, line := range t.Lines {
		if !strings.Contains(line, "BASE FARE") && !reFareLabel.MatchString(line) {
			continue
		}
		if v, ok := firstAmount(line); ok && (!base.Valid || v.GreaterThan(base.Decimal)) {
			base = decimal.NewNullDecimal(v)
		}
	}
	return base
}

// ExtractTotal returns the largest amount on any TOTAL line. When no such
// line carries an amount it falls back to the largest amount in the document.
func (p *Parser) ExtractTotal(t Text) decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		if !reTotal.MatchString(line) {
			continue
		}
		if v, ok := firstAmount(line); ok {
			total = decimal.Max(total, v)
		}
	}
	if !total.IsZero() {
		return total
	}
	for _, m := range reAmount.FindAllString(t.Upper, -1) {
		total = decimal.Max(total, parseAmount(m))
	}
	return total
}
