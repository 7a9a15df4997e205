package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RuleKey identifies a fare rule by carrier, directional route, point of sale
// and currency.
type RuleKey struct {
	Carrier  string
	Route    string
	POS      string
	Currency string
}

// NewRuleKey builds a key from its parts, upper-casing each of them.
func NewRuleKey(carrier, origin, dest, pos, currency string) RuleKey {
	return RuleKey{
		Carrier:  strings.ToUpper(carrier),
		Route:    strings.ToUpper(origin) + "-" + strings.ToUpper(dest),
		POS:      strings.ToUpper(pos),
		Currency: strings.ToUpper(currency),
	}
}

// String returns the pipe-delimited storage form CARRIER|ORIGIN-DEST|POS|CURRENCY.
func (k RuleKey) String() string {
	return k.Carrier + "|" + k.Route + "|" + k.POS + "|" + k.Currency
}

// Reversed returns the same key with origin and destination swapped.
func (k RuleKey) Reversed() RuleKey {
	origin, dest, ok := strings.Cut(k.Route, "-")
	if !ok {
		return k
	}
	k.Route = dest + "-" + origin
	return k
}

// Origin returns the first location of the route.
func (k RuleKey) Origin() string {
	origin, _, _ := strings.Cut(k.Route, "-")
	return origin
}

// Destination returns the second location of the route.
func (k RuleKey) Destination() string {
	_, dest, _ := strings.Cut(k.Route, "-")
	return dest
}

// ParseRuleKey parses the storage form produced by RuleKey.String.
func ParseRuleKey(s string) (RuleKey, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 || !strings.Contains(parts[1], "-") {
		return RuleKey{}, fmt.Errorf("%w: %q", ErrInvalidRuleKey, s)
	}
	return RuleKey{Carrier: parts[0], Route: parts[1], POS: parts[2], Currency: parts[3]}, nil
}

// RuleRecord accumulates the best observed offsets for one RuleKey. A field
// that was never observed stays null and is omitted from the stored JSON.
type RuleRecord struct {
	YQYROffset     decimal.NullDecimal
	XTOffset       decimal.NullDecimal
	GCTax          decimal.NullDecimal
	I9Tax          decimal.NullDecimal
	LastVerifiedAt string
}

type ruleRecordJSON struct {
	YQYROffset     *float64 `json:"yqyr_offset,omitempty"`
	XTOffset       *float64 `json:"xt_offset,omitempty"`
	GCTax          *float64 `json:"gc_tax,omitempty"`
	I9Tax          *float64 `json:"i9_tax,omitempty"`
	LastVerifiedAt string   `json:"last_verified_at,omitempty"`
}

func toFloatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

func fromFloatPtr(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Money(decimal.NewFromFloat(*f)))
}

// MarshalJSON writes offsets as JSON numbers.
func (r RuleRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleRecordJSON{
		YQYROffset:     toFloatPtr(r.YQYROffset),
		XTOffset:       toFloatPtr(r.XTOffset),
		GCTax:          toFloatPtr(r.GCTax),
		I9Tax:          toFloatPtr(r.I9Tax),
		LastVerifiedAt: r.LastVerifiedAt,
	})
}

// UnmarshalJSON reads the stored form; amounts are rounded to minor units.
func (r *RuleRecord) UnmarshalJSON(data []byte) error {
	var raw ruleRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RuleRecord{
		YQYROffset:     fromFloatPtr(raw.YQYROffset),
		XTOffset:       fromFloatPtr(raw.XTOffset),
		GCTax:          fromFloatPtr(raw.GCTax),
		I9Tax:          fromFloatPtr(raw.I9Tax),
		LastVerifiedAt: raw.LastVerifiedAt,
	}
	return nil
}

// Offsets returns the four offsets with unobserved values as zero.
func (r RuleRecord) Offsets() (yqyr, xt, gc, i9 decimal.Decimal) {
	return Coalesce(r.YQYROffset), Coalesce(r.XTOffset), Coalesce(r.GCTax), Coalesce(r.I9Tax)
}

// IsEmpty reports whether the record carries no data at all.
func (r RuleRecord) IsEmpty() bool {
	return !r.YQYROffset.Valid && !r.XTOffset.Valid && !r.GCTax.Valid && !r.I9Tax.Valid && r.LastVerifiedAt == ""
}

// RuleSet is the whole rule base keyed by RuleKey.String(). It is loaded and
// saved as a unit.
type RuleSet map[string]RuleRecord

// Clone returns a shallow copy safe to mutate.
func (s RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
