package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tradeflow/internal/domain"
	"tradeflow/internal/export"
)

func TestBuildWorkbook(t *testing.T) {
	data := &domain.ExtractedData{
		CustomerName:  "Jane Doe",
		CompanyName:   "Acme Plumbing",
		InvoiceNumber: "INV-42",
		Subtotal:      100,
		Tax:           8.25,
		Total:         108.25,
		LineItems: []domain.LineItem{
			{Description: "Widget", Quantity: 2, UnitPrice: 25, Amount: 50},
			{Description: "Labor", Quantity: 1.5, UnitPrice: 40, Amount: 60},
		},
		Extra: map[string]string{"poNumber": "PO-77"},
	}

	raw, err := export.BuildWorkbook(data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{"Summary", "Line Items"}, sheets)

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)

	got := map[string]string{}
	for _, row := range rows {
		if len(row) >= 2 {
			got[row[0]] = row[1]
		}
	}
	assert.Equal(t, "Jane Doe", got["Customer Name"])
	assert.Equal(t, "INV-42", got["Invoice Number"])
	assert.Equal(t, "108.25", got["Total"])
	assert.Equal(t, "PO-77", got["poNumber"])

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Description", "Quantity", "Unit Price", "Amount"}, items[0])
	assert.Equal(t, "Widget", items[1][0])
	assert.Equal(t, "Labor", items[2][0])
}

func TestBuildWorkbookEmptyExtraction(t *testing.T) {
	raw, err := export.BuildWorkbook(&domain.ExtractedData{LineItems: []domain.LineItem{}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	assert.Len(t, items, 1) // header only
}

func TestBuildFilename(t *testing.T) {
	name := export.BuildFilename("Smith & Sons: Invoice #42")
	assert.True(t, strings.HasPrefix(name, "Smith_Sons_Invoice_42_"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))

	assert.True(t, strings.HasPrefix(export.BuildFilename("!!!"), "extraction_"))
}
