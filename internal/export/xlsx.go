// Package export renders extracted document data as an XLSX workbook for
// download.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tradeflow/internal/domain"
)

const (
	summarySheet   = "Summary"
	lineItemsSheet = "Line Items"
)

// summaryRows maps workbook labels to extraction source keys, in display order.
var summaryRows = []struct {
	label string
	key   string
}{
	{"Customer Name", "customerName"},
	{"Customer Address", "customerAddress"},
	{"Customer Phone", "customerPhone"},
	{"Company Name", "companyName"},
	{"Company Address", "companyAddress"},
	{"Company Phone", "companyPhone"},
	{"Company Email", "companyEmail"},
	{"Service Date", "serviceDate"},
	{"Invoice Number", "invoiceNumber"},
	{"Subtotal", "subtotal"},
	{"Tax", "tax"},
	{"Total", "total"},
	{"Notes", "notes"},
}

// BuildWorkbook converts one extraction result into an XLSX workbook with a
// summary sheet and a line items sheet. Extra keys from the extraction land at
// the bottom of the summary sheet.
func BuildWorkbook(data *domain.ExtractedData) ([]byte, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(lineItemsSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	// excelize seeds a default "Sheet1"; drop it so only our sheets remain.
	_ = f.DeleteSheet("Sheet1")

	if err := writeSummary(f, data); err != nil {
		return nil, err
	}
	if err := writeLineItems(f, data.LineItems); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 48)
	_ = f.SetColWidth(lineItemsSheet, "A", "A", 48)
	_ = f.SetColWidth(lineItemsSheet, "B", "D", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, data *domain.ExtractedData) error {
	row := 1
	write := func(label, value string) error {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(summarySheet, labelCell, label); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, valueCell, value); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, r := range summaryRows {
		v, _ := data.Lookup(r.key)
		if err := write(r.label, v); err != nil {
			return fmt.Errorf("xlsx summary: %w", err)
		}
	}

	// Extra keys appear after the fixed schema, in the order Keys reports them.
	for _, key := range data.Keys() {
		if _, fixed := fixedKeys[key]; fixed || key == domain.LineItemsKey {
			continue
		}
		v, _ := data.Lookup(key)
		if err := write(key, v); err != nil {
			return fmt.Errorf("xlsx summary: %w", err)
		}
	}
	return nil
}

var fixedKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(summaryRows))
	for _, r := range summaryRows {
		m[r.key] = struct{}{}
	}
	return m
}()

func writeLineItems(f *excelize.File, items []domain.LineItem) error {
	headers := []string{"Description", "Quantity", "Unit Price", "Amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(lineItemsSheet, cell, h); err != nil {
			return fmt.Errorf("xlsx line items: %w", err)
		}
	}

	for i, item := range items {
		values := []interface{}{item.Description, item.Quantity, item.UnitPrice, item.Amount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(lineItemsSheet, cell, v); err != nil {
				return fmt.Errorf("xlsx line items: %w", err)
			}
		}
	}
	return nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.xlsx, falling back to
// "extraction" when the name sanitizes to nothing.
func BuildFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "extraction"
	}
	return fmt.Sprintf("%s_%s.xlsx", s, time.Now().Format("2006-01-02"))
}
