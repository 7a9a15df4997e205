package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"farerules/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row shared by the CSV and XLSX exports.
var columns = []string{
	"Rule Key",
	"Carrier",
	"Origin",
	"Destination",
	"POS",
	"Currency",
	"YQ/YR Offset",
	"XT Offset",
	"GC Tax",
	"I9 Tax",
	"Last Verified At",
}

// RuleRow is one exported rule.
type RuleRow struct {
	Key    domain.RuleKey
	Record domain.RuleRecord
}

// RowsFromSet flattens a rule set into rows ordered by key.
func RowsFromSet(set domain.RuleSet) ([]RuleRow, error) {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]RuleRow, 0, len(keys))
	for _, k := range keys {
		key, err := domain.ParseRuleKey(k)
		if err != nil {
			return nil, err
		}
		rows = append(rows, RuleRow{Key: key, Record: set[k]})
	}
	return rows, nil
}

// Writer wraps csv.Writer for exporting rules as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRules writes one row per rule.
func (w *Writer) WriteRules(rows []RuleRow) error {
	for i := range rows {
		if err := w.csv.Write(ruleToRow(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// ruleToRow converts a rule to a string slice; unobserved offsets stay empty.
func ruleToRow(r *RuleRow) []string {
	row := make([]string, len(columns))
	row[0] = r.Key.String()
	row[1] = r.Key.Carrier
	row[2] = r.Key.Origin()
	row[3] = r.Key.Destination()
	row[4] = r.Key.POS
	row[5] = r.Key.Currency
	row[6] = formatMoney(r.Record.YQYROffset)
	row[7] = formatMoney(r.Record.XTOffset)
	row[8] = formatMoney(r.Record.GCTax)
	row[9] = formatMoney(r.Record.I9Tax)
	row[10] = r.Record.LastVerifiedAt
	return row
}

func formatMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name string, format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), format)
}
