package pdfform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/domain"
	"tradeflow/internal/pdfform"
	"tradeflow/internal/testutil"
)

func invoiceForm() []byte {
	return testutil.FormPDF(
		testutil.FormFieldSpec{Name: "BillTo_Name", FT: "Tx"},
		testutil.FormFieldSpec{Name: "Total", FT: "Tx"},
		testutil.FormFieldSpec{Name: "Code", FT: "Tx", MaxLen: 5},
		testutil.FormFieldSpec{Name: "Approved", FT: "Btn"},
		testutil.FormFieldSpec{Name: "Region", FT: "Ch"},
	)
}

func TestReadFields(t *testing.T) {
	fields, err := pdfform.ReadFields(invoiceForm())
	require.NoError(t, err)

	assert.Equal(t, []domain.FieldDescriptor{
		{Name: "BillTo_Name", Kind: domain.FieldKindText},
		{Name: "Total", Kind: domain.FieldKindText},
		{Name: "Code", Kind: domain.FieldKindText, MaxLen: 5},
		{Name: "Approved", Kind: domain.FieldKindCheckbox},
		{Name: "Region", Kind: domain.FieldKindUnknown},
	}, fields)
}

func TestReadFieldsMalformedDocument(t *testing.T) {
	_, err := pdfform.ReadFields([]byte("not a pdf at all"))
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestFillTextAndCheckbox(t *testing.T) {
	data := &domain.ExtractedData{
		CustomerName: "Jane Doe",
		Total:        150,
	}
	mappings := []domain.FieldMapping{
		{TargetField: "BillTo_Name", SourceKey: "customerName"},
		{TargetField: "Total", SourceKey: "total"},
		{TargetField: "Approved", SourceKey: domain.ManualKey, ManualValue: "Yes"},
	}

	filled, err := pdfform.Fill(invoiceForm(), data, mappings)
	require.NoError(t, err)

	values, err := pdfform.ReadFieldValues(filled)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", values["BillTo_Name"])
	assert.Equal(t, "150", values["Total"])
	assert.Equal(t, "Yes", values["Approved"])
}

func TestFillManualValueBeatsDataKey(t *testing.T) {
	// The manual sentinel always yields the manual value, even though the
	// data carries a customerName of its own.
	data := &domain.ExtractedData{CustomerName: "Jane Doe"}
	mappings := []domain.FieldMapping{
		{TargetField: "BillTo_Name", SourceKey: domain.ManualKey, ManualValue: "Custom Corp"},
	}

	filled, err := pdfform.Fill(invoiceForm(), data, mappings)
	require.NoError(t, err)

	values, err := pdfform.ReadFieldValues(filled)
	require.NoError(t, err)
	assert.Equal(t, "Custom Corp", values["BillTo_Name"])
}

func TestFillLineItemsAggregate(t *testing.T) {
	data := &domain.ExtractedData{
		LineItems: []domain.LineItem{
			{Description: "Widget", Quantity: 2, Amount: 50},
			{Description: "Gadget", Quantity: 1.5, Amount: 12.75},
		},
	}
	mappings := []domain.FieldMapping{
		{TargetField: "BillTo_Name", SourceKey: domain.LineItemsKey},
	}

	filled, err := pdfform.Fill(invoiceForm(), data, mappings)
	require.NoError(t, err)

	values, err := pdfform.ReadFieldValues(filled)
	require.NoError(t, err)
	assert.Equal(t, "2x Widget ($50)\n1.5x Gadget ($12.75)", values["BillTo_Name"])
}

func TestFillTruncatesToMaxLen(t *testing.T) {
	mappings := []domain.FieldMapping{
		{TargetField: "Code", SourceKey: domain.ManualKey, ManualValue: "HelloWorld"},
	}

	filled, err := pdfform.Fill(invoiceForm(), &domain.ExtractedData{}, mappings)
	require.NoError(t, err)

	values, err := pdfform.ReadFieldValues(filled)
	require.NoError(t, err)
	assert.Equal(t, "Hello", values["Code"])
}

func TestFillCheckboxTruthSet(t *testing.T) {
	tests := []struct {
		value   string
		checked bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"Yes", true},
		{"no", false},
		{"0", false},
		{"", false},
		{"checked", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			mappings := []domain.FieldMapping{
				{TargetField: "Approved", SourceKey: domain.ManualKey, ManualValue: tc.value},
			}
			filled, err := pdfform.Fill(invoiceForm(), &domain.ExtractedData{}, mappings)
			require.NoError(t, err)

			values, err := pdfform.ReadFieldValues(filled)
			require.NoError(t, err)
			if tc.checked {
				assert.Equal(t, "Yes", values["Approved"])
			} else {
				// Never unchecked, never checked: the initial Off state stays.
				assert.Equal(t, "Off", values["Approved"])
			}
		})
	}
}

func TestFillSkipsStaleAndUnknownFields(t *testing.T) {
	mappings := []domain.FieldMapping{
		{TargetField: "Removed_Field", SourceKey: domain.ManualKey, ManualValue: "x"},
		{TargetField: "Region", SourceKey: domain.ManualKey, ManualValue: "x"},
		{TargetField: "Total", SourceKey: "doesNotExist"},
	}

	filled, err := pdfform.Fill(invoiceForm(), &domain.ExtractedData{Total: 7}, mappings)
	require.NoError(t, err)

	values, err := pdfform.ReadFieldValues(filled)
	require.NoError(t, err)
	// Unknown-kind fields are never written.
	assert.Equal(t, "", values["Region"])
	// An absent source key derives the empty string.
	assert.Equal(t, "", values["Total"])
}

func TestFillMalformedDocument(t *testing.T) {
	_, err := pdfform.Fill([]byte{0x01, 0x02}, &domain.ExtractedData{}, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestFilledDocumentStillParses(t *testing.T) {
	mappings := []domain.FieldMapping{
		{TargetField: "BillTo_Name", SourceKey: domain.ManualKey, ManualValue: "Jane"},
	}
	filled, err := pdfform.Fill(invoiceForm(), &domain.ExtractedData{}, mappings)
	require.NoError(t, err)

	fields, err := pdfform.ReadFields(filled)
	require.NoError(t, err)
	assert.Len(t, fields, 5)
}
