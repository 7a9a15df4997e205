package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Carrier identifies the airline a ticket was issued by.
type Carrier string

const (
	CarrierPX      Carrier = "PX"
	CarrierCG      Carrier = "CG"
	CarrierUnknown Carrier = "UNK"
)

// UnknownRoute is the route sentinel used when no strategy resolves a pair.
const UnknownRoute = "UNK-UNK"

// Tax codes the rule store derives offsets from.
const (
	TaxYQ = "YQ"
	TaxYR = "YR"
	TaxXT = "XT"
	TaxGC = "GC"
	TaxI9 = "I9"
)

// RequiredTaxCodes must be present in every configured tax-code table.
var RequiredTaxCodes = []string{TaxYQ, TaxYR, TaxXT, TaxGC, TaxI9}

// TaxComponents holds the base fare and the per-code tax amounts of a ticket.
// An entry with Valid == false was never observed in the document; it reads as
// 0.00 wherever amounts are summed or serialized.
type TaxComponents struct {
	Base  decimal.NullDecimal
	Codes []string
	Taxes map[string]decimal.NullDecimal
}

// NewTaxComponents returns components for the given codes, all unobserved.
func NewTaxComponents(codes []string) TaxComponents {
	c := TaxComponents{
		Codes: append([]string(nil), codes...),
		Taxes: make(map[string]decimal.NullDecimal, len(codes)),
	}
	for _, code := range codes {
		c.Taxes[code] = decimal.NullDecimal{}
	}
	return c
}

// Amount returns the value for code, or zero when it was not observed.
func (c TaxComponents) Amount(code string) decimal.Decimal {
	return Coalesce(c.Taxes[code])
}

// BaseAmount returns the base fare, or zero when it was not observed.
func (c TaxComponents) BaseAmount() decimal.Decimal {
	return Coalesce(c.Base)
}

// Observed reports whether code was matched in the document.
func (c TaxComponents) Observed(code string) bool {
	return c.Taxes[code].Valid
}

// TaxSum adds every tax code, excluding the base fare.
func (c TaxComponents) TaxSum() decimal.Decimal {
	sum := decimal.Zero
	for _, code := range c.Codes {
		sum = sum.Add(c.Amount(code))
	}
	return sum
}

// ObservedCodes lists the codes matched in the document, in table order.
func (c TaxComponents) ObservedCodes() []string {
	var out []string
	for _, code := range c.Codes {
		if c.Observed(code) {
			out = append(out, code)
		}
	}
	return out
}

// MarshalJSON writes {"base": n, "YQ": n, ...} with unobserved values as 0.
func (c TaxComponents) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(c.Codes)+1)
	out["base"] = c.BaseAmount().InexactFloat64()
	for _, code := range c.Codes {
		out[code] = c.Amount(code).InexactFloat64()
	}
	return json.Marshal(out)
}

// ParsedTicket is the structured result of parsing one ticket document.
type ParsedTicket struct {
	Carrier    Carrier         `json:"carrier"`
	Route      string          `json:"route"`
	Currency   string          `json:"currency"`
	Components TaxComponents   `json:"components"`
	Total      decimal.Decimal `json:"total"`
}

// MarshalJSON renders the total as a JSON number.
func (t ParsedTicket) MarshalJSON() ([]byte, error) {
	type alias ParsedTicket
	return json.Marshal(struct {
		alias
		Total float64 `json:"total"`
	}{alias: alias(t), Total: t.Total.InexactFloat64()})
}

// Coalesce returns the decimal value, or zero when it is null.
func Coalesce(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Money rounds d to currency minor units.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
