package port

import (
	"context"

	"tradeflow/internal/domain"
)

// ExtractInput carries the data needed for document extraction.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
}

// DocumentExtractor abstracts LLM-based structured data extraction from a
// source document. Any upstream failure wraps domain.ErrExtractionFailed.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.ExtractedData, error)
}

// Suggestion is the outcome of a smart-match request. An unavailable
// suggestion carries no mappings; the caller falls back to heuristics. The
// zero value is unavailable.
type Suggestion struct {
	Mappings []domain.FieldMapping
}

// Available reports whether the suggestion produced a usable mapping.
func (s Suggestion) Available() bool {
	return len(s.Mappings) > 0
}

// FieldMatcher abstracts AI-assisted mapping of form field names to extracted
// data keys. Suggest is total: network or parse failures surface as an
// unavailable Suggestion, never as an error.
type FieldMatcher interface {
	Suggest(ctx context.Context, fieldNames, knownKeys []string) Suggestion
}
