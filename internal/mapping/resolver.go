package mapping

import (
	"context"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

// Resolver picks one mapping source for a form: the saved mapping, the AI
// suggestion, or the heuristic fallback, strictly in that order. Sources are
// never merged field by field.
type Resolver struct {
	matcher port.FieldMatcher
}

// NewResolver creates a Resolver backed by the given smart-match capability.
func NewResolver(matcher port.FieldMatcher) *Resolver {
	return &Resolver{matcher: matcher}
}

// ResolveInput carries the per-form state the cascade needs.
type ResolveInput struct {
	Fields        []domain.FieldDescriptor
	SavedMappings []domain.FieldMapping
	// DataKeys are the known source keys of the extracted data; nil when no
	// extraction result is available for this run.
	DataKeys []string
	HasData  bool
}

// Resolve returns the mapping for one form. A non-empty saved mapping is used
// verbatim and the matcher is never consulted. Without extracted data no
// mapping is proposed at all. A failed or empty suggestion degrades to the
// keyword heuristics; Resolve itself never fails.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) []domain.FieldMapping {
	if len(in.SavedMappings) > 0 {
		return in.SavedMappings
	}
	if !in.HasData {
		return nil
	}

	fieldNames := make([]string, len(in.Fields))
	for i, f := range in.Fields {
		fieldNames[i] = f.Name
	}
	if suggestion := r.matcher.Suggest(ctx, fieldNames, in.DataKeys); suggestion.Available() {
		return suggestion.Mappings
	}
	return HeuristicMap(in.Fields, in.DataKeys)
}
