package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farerules/internal/domain"
)

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleSet() domain.RuleSet {
	return domain.RuleSet{
		"PX|POM-LAE|PG|PGK": {YQYROffset: money("45.00"), I9Tax: money("7.10"), LastVerifiedAt: "2025-01-02"},
		"CG|MAG-WWK|PG|PGK": {YQYROffset: money("30.00"), XTOffset: money("15.50"), GCTax: money("22.80"), LastVerifiedAt: "2025-01-01"},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, 11)
	assert.Equal(t, "Rule Key", row[0])
	assert.Equal(t, "Last Verified At", row[10])
}

func TestRowsFromSet_SortedByKey(t *testing.T) {
	rows, err := RowsFromSet(sampleSet())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CG|MAG-WWK|PG|PGK", rows[0].Key.String())
	assert.Equal(t, "PX|POM-LAE|PG|PGK", rows[1].Key.String())
}

func TestRowsFromSet_BadKey(t *testing.T) {
	_, err := RowsFromSet(domain.RuleSet{"not-a-key": {}})
	assert.ErrorIs(t, err, domain.ErrInvalidRuleKey)
}

func TestWriteRules(t *testing.T) {
	rows, err := RowsFromSet(sampleSet())
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRules(rows))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{
		"CG|MAG-WWK|PG|PGK", "CG", "MAG", "WWK", "PG", "PGK",
		"30.00", "15.50", "22.80", "", "2025-01-01",
	}, records[0])
	assert.Equal(t, []string{
		"PX|POM-LAE|PG|PGK", "PX", "POM", "LAE", "PG", "PGK",
		"45.00", "", "", "7.10", "2025-01-02",
	}, records[1])
}

func TestXLSX_RoundTrip(t *testing.T) {
	rows, err := RowsFromSet(sampleSet())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))
	require.NotZero(t, buf.Len())

	set, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, set, 2)

	cg := set["CG|MAG-WWK|PG|PGK"]
	assert.Equal(t, "15.50", cg.XTOffset.Decimal.StringFixed(2))
	assert.Equal(t, "22.80", cg.GCTax.Decimal.StringFixed(2))
	assert.False(t, cg.I9Tax.Valid)
	assert.Equal(t, "2025-01-01", cg.LastVerifiedAt)

	px := set["PX|POM-LAE|PG|PGK"]
	assert.Equal(t, "7.10", px.I9Tax.Decimal.StringFixed(2))
	assert.False(t, px.XTOffset.Valid)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX(bytes.NewReader([]byte("plain text")))
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fare rules", "fare_rules"},
		{"rules/export: PX & CG", "rules_export_PX_CG"},
		{"__leading__", "leading"},
		{"already-clean_name", "already-clean_name"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "fare_rules_2025-03-14.xlsx", BuildFilename("fare rules", domain.ExportXLSX, now))
	assert.Equal(t, "rules_2025-03-14.csv", BuildFilename("rules", domain.ExportCSV, now))
}
