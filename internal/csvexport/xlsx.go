package csvexport

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"farerules/internal/domain"
)

// SheetName is the worksheet holding exported rules.
const SheetName = "Rules"

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []RuleRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := xlsxRow(&rows[i])
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// xlsxRow keeps offsets numeric so spreadsheets can sum them.
func xlsxRow(r *RuleRow) []any {
	strs := ruleToRow(r)
	out := make([]any, len(strs))
	for i, s := range strs {
		out[i] = s
	}
	for i, v := range []decimal.NullDecimal{r.Record.YQYROffset, r.Record.XTOffset, r.Record.GCTax, r.Record.I9Tax} {
		if v.Valid {
			out[6+i] = v.Decimal.InexactFloat64()
		} else {
			out[6+i] = nil
		}
	}
	return out
}

// ReadXLSX loads a workbook in the export layout back into a rule set. Rows
// with a blank key are skipped; blank offset cells stay unobserved.
func ReadXLSX(r io.Reader) (domain.RuleSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	set := domain.RuleSet{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		raw := strings.TrimSpace(cellVal(row, 0))
		if raw == "" {
			continue
		}
		key, err := domain.ParseRuleKey(strings.ToUpper(raw))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		var rec domain.RuleRecord
		fields := []*decimal.NullDecimal{&rec.YQYROffset, &rec.XTOffset, &rec.GCTax, &rec.I9Tax}
		for j, field := range fields {
			v := strings.TrimSpace(cellVal(row, 6+j))
			if v == "" {
				continue
			}
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, columns[6+j], err)
			}
			*field = decimal.NewNullDecimal(domain.Money(d))
		}
		rec.LastVerifiedAt = strings.TrimSpace(cellVal(row, 10))
		set[key.String()] = rec
	}
	return set, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
