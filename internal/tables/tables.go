// Package tables holds the editable lookup tables that drive ticket parsing:
// location whitelists, the stopword blacklist, tax and alias codes, and the
// quoting defaults.
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"farerules/internal/domain"
)

//go:embed tables.yaml
var defaultYAML []byte

// CarrierMarker describes how a carrier is recognized in ticket text.
type CarrierMarker struct {
	Code    string   `yaml:"code"`
	Phrases []string `yaml:"phrases"`
	Tokens  []string `yaml:"tokens"`
}

// Tables is the parsing and quoting configuration.
type Tables struct {
	DomesticLocations []string        `yaml:"domestic_locations"`
	RegionalLocations []string        `yaml:"regional_locations"`
	Stopwords         []string        `yaml:"stopwords"`
	TaxCodes          []string        `yaml:"tax_codes"`
	XTAliases         []string        `yaml:"xt_aliases"`
	Currencies        []string        `yaml:"currencies"`
	DefaultCurrency   string          `yaml:"default_currency"`
	DefaultPOS        string          `yaml:"default_pos"`
	DefaultMarkupPct  float64         `yaml:"default_markup_pct"`
	Carriers          []CarrierMarker `yaml:"carriers"`

	locations map[string]bool
	stopwords map[string]bool
}

// Default returns the embedded tables.
func Default() *Tables {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("tables: embedded defaults invalid: %v", err))
	}
	return t
}

// Load reads tables from path, or returns the embedded defaults when path is
// empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("tables %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML table document.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding tables: %w", err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.index()
	return &t, nil
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (t *Tables) normalize() {
	t.DomesticLocations = upperAll(t.DomesticLocations)
	t.RegionalLocations = upperAll(t.RegionalLocations)
	t.Stopwords = upperAll(t.Stopwords)
	t.TaxCodes = upperAll(t.TaxCodes)
	t.XTAliases = upperAll(t.XTAliases)
	t.Currencies = upperAll(t.Currencies)
	t.DefaultCurrency = strings.ToUpper(strings.TrimSpace(t.DefaultCurrency))
	t.DefaultPOS = strings.ToUpper(strings.TrimSpace(t.DefaultPOS))
	for i := range t.Carriers {
		c := &t.Carriers[i]
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		c.Tokens = upperAll(c.Tokens)
		// Phrases keep their leading space; it anchors them to a word start.
		for j, p := range c.Phrases {
			c.Phrases[j] = strings.ToUpper(p)
		}
	}
}

func isCode(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Validate checks the invariants the parser relies on.
func (t *Tables) Validate() error {
	for _, code := range append(append([]string{}, t.DomesticLocations...), t.RegionalLocations...) {
		if !isCode(code, 3) {
			return fmt.Errorf("%w: location code %q is not three letters", domain.ErrInvalidTables, code)
		}
	}
	if len(t.DomesticLocations)+len(t.RegionalLocations) == 0 {
		return fmt.Errorf("%w: no location codes", domain.ErrInvalidTables)
	}
	have := make(map[string]bool, len(t.TaxCodes))
	for _, c := range t.TaxCodes {
		have[c] = true
	}
	for _, c := range domain.RequiredTaxCodes {
		if !have[c] {
			return fmt.Errorf("%w: tax code %s missing", domain.ErrInvalidTables, c)
		}
	}
	if !isCode(t.DefaultCurrency, 3) {
		return fmt.Errorf("%w: default currency %q", domain.ErrInvalidTables, t.DefaultCurrency)
	}
	for _, c := range t.Currencies {
		if !isCode(c, 3) {
			return fmt.Errorf("%w: currency %q", domain.ErrInvalidTables, c)
		}
	}
	if t.DefaultPOS == "" {
		return fmt.Errorf("%w: default pos is empty", domain.ErrInvalidTables)
	}
	if t.DefaultMarkupPct < 0 {
		return fmt.Errorf("%w: negative default markup", domain.ErrInvalidTables)
	}
	for _, c := range t.Carriers {
		if c.Code == "" || len(c.Phrases)+len(c.Tokens) == 0 {
			return fmt.Errorf("%w: carrier entry %q has no markers", domain.ErrInvalidTables, c.Code)
		}
	}
	return nil
}

func (t *Tables) index() {
	t.locations = make(map[string]bool, len(t.DomesticLocations)+len(t.RegionalLocations))
	for _, c := range t.DomesticLocations {
		t.locations[c] = true
	}
	for _, c := range t.RegionalLocations {
		t.locations[c] = true
	}
	t.stopwords = make(map[string]bool, len(t.Stopwords))
	for _, w := range t.Stopwords {
		t.stopwords[w] = true
	}
}

// IsLocation reports whether code is in the domestic or regional whitelist.
func (t *Tables) IsLocation(code string) bool {
	return t.locations[code]
}

// IsStopword reports whether code is blacklisted as a route token.
func (t *Tables) IsStopword(code string) bool {
	return t.stopwords[code]
}
