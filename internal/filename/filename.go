// Package filename derives output filenames from a small placeholder pattern.
package filename

import (
	"strings"

	"tradeflow/internal/domain"
)

// DefaultPattern is used when a template has no pattern of its own.
const DefaultPattern = "{TemplateName}_{CustomerName}_{Date}"

// Placeholder describes one recognized pattern token for UI consumption.
type Placeholder struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// AvailablePlaceholders lists the tokens Render understands.
var AvailablePlaceholders = []Placeholder{
	{Label: "Customer Name", Key: "{CustomerName}"},
	{Label: "Date", Key: "{Date}"},
	{Label: "Invoice #", Key: "{InvoiceNumber}"},
	{Label: "Template Name", Key: "{TemplateName}"},
}

// Render expands pattern against the extracted data and template name. Total
// and deterministic: unknown placeholders pass through verbatim, an empty
// pattern falls back to DefaultPattern, and the result always ends in ".pdf".
func Render(pattern string, data *domain.ExtractedData, templateName string) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	out := strings.ReplaceAll(pattern, "{CustomerName}", sanitize(data.CustomerName))
	out = strings.ReplaceAll(out, "{Date}", sanitize(data.ServiceDate))
	out = strings.ReplaceAll(out, "{InvoiceNumber}", sanitize(data.InvoiceNumber))
	out = strings.ReplaceAll(out, "{TemplateName}", sanitize(templateName))
	return out + ".pdf"
}

// sanitize maps an empty source value to "Unknown" and deletes every character
// outside [A-Za-z0-9-_]. Characters are dropped, not replaced.
func sanitize(s string) string {
	if s == "" {
		return "Unknown"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
