package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MappingList is a []FieldMapping stored as a jsonb column.
type MappingList []FieldMapping

// Value implements driver.Valuer for jsonb storage.
func (m MappingList) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for jsonb storage.
func (m *MappingList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("domain.MappingList: unsupported scan source")
	}
}

// LineItem is a single billed line on an invoice or estimate.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

// ExtractedData is the structured result of document extraction. The fixed
// fields cover the known invoice/estimate schema; any additional scalar
// members returned by the extractor land in Extra so they stay mappable.
type ExtractedData struct {
	CustomerName    string            `json:"customerName"`
	CustomerAddress string            `json:"customerAddress"`
	CustomerPhone   string            `json:"customerPhone"`
	CompanyName     string            `json:"companyName"`
	CompanyAddress  string            `json:"companyAddress"`
	CompanyPhone    string            `json:"companyPhone"`
	CompanyEmail    string            `json:"companyEmail"`
	ServiceDate     string            `json:"serviceDate"`
	InvoiceNumber   string            `json:"invoiceNumber"`
	Subtotal        float64           `json:"subtotal"`
	Tax             float64           `json:"tax"`
	Total           float64           `json:"total"`
	Notes           string            `json:"notes"`
	LineItems       []LineItem        `json:"lineItems"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// scalarKeys lists the fixed scalar keys in schema order. LineItemsKey is
// appended by Keys so the aggregate stays addressable as a mapping source.
var scalarKeys = []string{
	"customerName", "customerAddress", "customerPhone",
	"companyName", "companyAddress", "companyPhone", "companyEmail",
	"serviceDate", "invoiceNumber", "subtotal", "tax", "total", "notes",
}

// Keys returns every mappable source key: the fixed schema keys, the line
// items aggregate, and any extra keys in sorted order.
func (d *ExtractedData) Keys() []string {
	keys := make([]string, 0, len(scalarKeys)+1+len(d.Extra))
	keys = append(keys, scalarKeys...)
	keys = append(keys, LineItemsKey)
	extras := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	return append(keys, extras...)
}

// Lookup returns the stringified value for a scalar source key. The second
// return reports whether the key names a known scalar. Numeric values are
// rendered without a trailing ".0" so a total of 150 fills as "150".
func (d *ExtractedData) Lookup(key string) (string, bool) {
	switch key {
	case "customerName":
		return d.CustomerName, true
	case "customerAddress":
		return d.CustomerAddress, true
	case "customerPhone":
		return d.CustomerPhone, true
	case "companyName":
		return d.CompanyName, true
	case "companyAddress":
		return d.CompanyAddress, true
	case "companyPhone":
		return d.CompanyPhone, true
	case "companyEmail":
		return d.CompanyEmail, true
	case "serviceDate":
		return d.ServiceDate, true
	case "invoiceNumber":
		return d.InvoiceNumber, true
	case "subtotal":
		return FormatNumber(d.Subtotal), true
	case "tax":
		return FormatNumber(d.Tax), true
	case "total":
		return FormatNumber(d.Total), true
	case "notes":
		return d.Notes, true
	}
	if v, ok := d.Extra[key]; ok {
		return v, true
	}
	return "", false
}

// UnmarshalJSON decodes the fixed schema and collects unrecognized top-level
// scalar members into Extra. LineItems is never nil after a successful decode.
func (d *ExtractedData) UnmarshalJSON(b []byte) error {
	type alias ExtractedData
	var fixed alias
	if err := json.Unmarshal(b, &fixed); err != nil {
		return err
	}
	*d = ExtractedData(fixed)
	if d.LineItems == nil {
		d.LineItems = []LineItem{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	known := map[string]bool{LineItemsKey: true, "extra": true}
	for _, k := range scalarKeys {
		known[k] = true
	}
	for k, v := range raw {
		if known[k] {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			d.setExtra(k, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			d.setExtra(k, FormatNumber(n))
		}
		// Non-scalar extras (objects, arrays) are not mappable and are dropped.
	}
	return nil
}

func (d *ExtractedData) setExtra(key, value string) {
	if d.Extra == nil {
		d.Extra = map[string]string{}
	}
	d.Extra[key] = value
}

// FormatNumber renders a float the way fill values expect: "150" for
// whole numbers, "150.5" otherwise.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FieldDescriptor describes one fillable field of a form document.
type FieldDescriptor struct {
	Name   string    `json:"name"`
	Kind   FieldKind `json:"kind"`
	MaxLen int       `json:"maxLen,omitempty"` // 0 means unconstrained
}

// FieldMapping assigns one form field a value source.
type FieldMapping struct {
	TargetField string `json:"targetField"`
	SourceKey   string `json:"sourceKey"`
	ManualValue string `json:"manualValue,omitempty"`
}

const (
	// ManualKey is the SourceKey sentinel for a user-entered value.
	ManualKey = "__MANUAL__"
	// LineItemsKey is the SourceKey for the aggregate line-item rendering.
	LineItemsKey = "lineItems"
)

// Template is the persisted record for an uploaded form template. The PDF
// payload lives in object storage; the row owns only metadata and settings.
type Template struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Bucket          string      `db:"bucket" json:"-"`
	ObjectKey       string      `db:"object_key" json:"-"`
	SavedMappings   MappingList `db:"saved_mappings" json:"savedMappings,omitempty"`
	FilenamePattern string      `db:"filename_pattern" json:"filenamePattern,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

// TemplateSettings is the per-template state written back after a generation
// run: the confirmed mapping plus the filename pattern.
type TemplateSettings struct {
	Mappings        []FieldMapping `json:"mappings"`
	FilenamePattern string         `json:"filenamePattern"`
}

// RunConfig is the resolved per-template state for one generation run. Built
// once per prepare call, consumed by filling and filename rendering, then
// discarded.
type RunConfig struct {
	Template        Template          `json:"template"`
	Bytes           []byte            `json:"-"`
	Fields          []FieldDescriptor `json:"fields"`
	Mappings        []FieldMapping    `json:"mappings"`
	FilenamePattern string            `json:"filenamePattern"`
}

// Artifact is one filled output document with its derived filename.
type Artifact struct {
	TemplateID uuid.UUID `json:"templateId"`
	Filename   string    `json:"filename"`
	Bytes      []byte    `json:"bytes"`
}
