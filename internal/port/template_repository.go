package port

import (
	"context"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
)

// TemplateRepository defines the contract for template metadata persistence.
// The PDF payload itself lives in object storage; rows here carry only
// metadata, saved mappings, and the filename pattern.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	// UpdateSettings overwrites the saved mapping and, when non-empty, the
	// filename pattern. Last write wins; there is no concurrency check.
	UpdateSettings(ctx context.Context, id uuid.UUID, settings domain.TemplateSettings) error
	Delete(ctx context.Context, id uuid.UUID) error
}
