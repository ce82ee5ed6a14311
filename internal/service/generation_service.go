package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/filename"
	"tradeflow/internal/mapping"
	"tradeflow/internal/pdfform"
	"tradeflow/internal/port"
)

// RunRequest selects one template for generation, with the mapping and
// filename pattern confirmed by the caller.
type RunRequest struct {
	TemplateID      uuid.UUID             `json:"templateId"`
	Mappings        []domain.FieldMapping `json:"mappings"`
	FilenamePattern string                `json:"filenamePattern"`
}

// GenerationService defines the prepare/generate contract for filling runs.
type GenerationService interface {
	// Prepare resolves the mapping for each selected template so the caller
	// can review and adjust it before generating.
	Prepare(ctx context.Context, templateIDs []uuid.UUID, data *domain.ExtractedData) ([]domain.RunConfig, error)
	// Generate fills each selected template and returns the output documents.
	// After a fully successful run the confirmed settings are written back to
	// each template.
	Generate(ctx context.Context, runs []RunRequest, data *domain.ExtractedData) ([]domain.Artifact, error)
}

type generationService struct {
	templateRepo port.TemplateRepository
	storage      port.ObjectStorage
	resolver     *mapping.Resolver
}

// NewGenerationService creates a new GenerationService implementation.
func NewGenerationService(
	templateRepo port.TemplateRepository,
	storage port.ObjectStorage,
	resolver *mapping.Resolver,
) GenerationService {
	return &generationService{
		templateRepo: templateRepo,
		storage:      storage,
		resolver:     resolver,
	}
}

func (s *generationService) Prepare(ctx context.Context, templateIDs []uuid.UUID, data *domain.ExtractedData) ([]domain.RunConfig, error) {
	configs := make([]domain.RunConfig, 0, len(templateIDs))
	for _, id := range templateIDs {
		tpl, err := s.templateRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		payload, err := s.storage.Download(ctx, tpl.Bucket, tpl.ObjectKey)
		if err != nil {
			return nil, fmt.Errorf("downloading template %s: %w", id, err)
		}
		fields, err := pdfform.ReadFields(payload)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}

		in := mapping.ResolveInput{
			Fields:        fields,
			SavedMappings: tpl.SavedMappings,
		}
		if data != nil {
			in.DataKeys = data.Keys()
			in.HasData = true
		}
		mappings := s.resolver.Resolve(ctx, in)

		pattern := tpl.FilenamePattern
		if pattern == "" {
			pattern = filename.DefaultPattern
		}

		configs = append(configs, domain.RunConfig{
			Template:        *tpl,
			Bytes:           payload,
			Fields:          fields,
			Mappings:        mappings,
			FilenamePattern: pattern,
		})
	}
	return configs, nil
}

func (s *generationService) Generate(ctx context.Context, runs []RunRequest, data *domain.ExtractedData) ([]domain.Artifact, error) {
	artifacts := make([]domain.Artifact, 0, len(runs))
	for _, run := range runs {
		tpl, err := s.templateRepo.GetByID(ctx, run.TemplateID)
		if err != nil {
			return nil, err
		}
		payload, err := s.storage.Download(ctx, tpl.Bucket, tpl.ObjectKey)
		if err != nil {
			return nil, fmt.Errorf("downloading template %s: %w", run.TemplateID, err)
		}

		filled, err := pdfform.Fill(payload, data, run.Mappings)
		if err != nil {
			return nil, fmt.Errorf("filling template %s: %w", run.TemplateID, err)
		}

		artifacts = append(artifacts, domain.Artifact{
			TemplateID: run.TemplateID,
			Filename:   filename.Render(run.FilenamePattern, data, tpl.Name),
			Bytes:      filled,
		})
	}

	// The run succeeded; persist what the user confirmed so the next run for
	// these templates starts from it. Write-back failures don't fail the run.
	var wg sync.WaitGroup
	for _, run := range runs {
		wg.Add(1)
		go func(run RunRequest) {
			defer wg.Done()
			settings := domain.TemplateSettings{
				Mappings:        run.Mappings,
				FilenamePattern: run.FilenamePattern,
			}
			if err := s.templateRepo.UpdateSettings(ctx, run.TemplateID, settings); err != nil {
				log.Printf("generationService.Generate: saving settings for template %s: %v", run.TemplateID, err)
			}
		}(run)
	}
	wg.Wait()

	return artifacts, nil
}
