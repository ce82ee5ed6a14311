package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type templateRepo struct {
	db *sqlx.DB
}

// NewTemplateRepo creates a new PostgreSQL-backed TemplateRepository.
func NewTemplateRepo(db *sqlx.DB) port.TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *domain.Template) error {
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	query := `INSERT INTO templates (id, name, bucket, object_key, saved_mappings, filename_pattern, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		tpl.ID, tpl.Name, tpl.Bucket, tpl.ObjectKey, tpl.SavedMappings,
		tpl.FilenamePattern, tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("templateRepo.Create: %w", err)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	var tpl domain.Template
	err := r.db.GetContext(ctx, &tpl,
		"SELECT * FROM templates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.GetByID: %w", err)
	}
	return &tpl, nil
}

func (r *templateRepo) List(ctx context.Context) ([]domain.Template, error) {
	var templates []domain.Template
	err := r.db.SelectContext(ctx, &templates,
		"SELECT * FROM templates ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("templateRepo.List: %w", err)
	}
	return templates, nil
}

func (r *templateRepo) UpdateSettings(ctx context.Context, id uuid.UUID, settings domain.TemplateSettings) error {
	now := time.Now().UTC()

	// The filename pattern is only overwritten when the caller supplies one;
	// the saved mapping always is.
	var (
		result sql.Result
		err    error
	)
	if settings.FilenamePattern != "" {
		result, err = r.db.ExecContext(ctx,
			`UPDATE templates SET saved_mappings = $1, filename_pattern = $2, updated_at = $3
			 WHERE id = $4`,
			domain.MappingList(settings.Mappings), settings.FilenamePattern, now, id)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE templates SET saved_mappings = $1, updated_at = $2
			 WHERE id = $3`,
			domain.MappingList(settings.Mappings), now, id)
	}
	if err != nil {
		return fmt.Errorf("templateRepo.UpdateSettings: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("templateRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
