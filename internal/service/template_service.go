package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/pdfform"
	"tradeflow/internal/port"
)

// TemplateUploadInput is the DTO for template upload requests.
type TemplateUploadInput struct {
	Name   string
	File   multipart.File
	Header *multipart.FileHeader
}

// TemplateDetail pairs a template row with the fields parsed from its payload.
type TemplateDetail struct {
	Template *domain.Template         `json:"template"`
	Fields   []domain.FieldDescriptor `json:"fields"`
}

// TemplateService defines the form-template management contract.
type TemplateService interface {
	Upload(ctx context.Context, input TemplateUploadInput) (*domain.Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*TemplateDetail, error)
	List(ctx context.Context) ([]domain.Template, error)
	Bytes(ctx context.Context, id uuid.UUID) (*domain.Template, []byte, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings domain.TemplateSettings) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateService struct {
	templateRepo port.TemplateRepository
	storage      port.ObjectStorage
	cfg          *config.S3Config
}

// NewTemplateService creates a new TemplateService implementation.
func NewTemplateService(
	templateRepo port.TemplateRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		storage:      storage,
		cfg:          cfg,
	}
}

func (s *templateService) Upload(ctx context.Context, input TemplateUploadInput) (*domain.Template, error) {
	// Templates must be PDF; source documents may also be images, forms may not.
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if ext != "pdf" {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	fileBytes, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	if detected := http.DetectContentType(fileBytes); detected != "application/pdf" {
		return nil, domain.ErrUnsupportedFileType
	}

	// Parse the form up front so broken uploads are rejected before they land
	// in storage.
	fields, err := pdfform.ReadFields(fileBytes)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fillable fields", domain.ErrMalformedDocument)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSuffix(input.Header.Filename, filepath.Ext(input.Header.Filename))
	}

	templateID := uuid.New()
	objectKey := fmt.Sprintf("templates/%s/%s", templateID, input.Header.Filename)

	tpl := &domain.Template{
		ID:        templateID,
		Name:      name,
		Bucket:    s.cfg.Bucket,
		ObjectKey: objectKey,
	}

	log.Printf("templateService.Upload: uploading template %q (%d fields, %d bytes)",
		name, len(fields), len(fileBytes))

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         objectKey,
		Body:        bytes.NewReader(fileBytes),
		ContentType: "application/pdf",
		Size:        int64(len(fileBytes)),
	})
	if err != nil {
		log.Printf("templateService.Upload: storage upload failed for %s: %v", templateID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		log.Printf("templateService.Upload: failed to create template row: %v", err)
		// Best effort: don't leave an orphaned payload behind.
		_ = s.storage.Delete(ctx, s.cfg.Bucket, objectKey)
		return nil, fmt.Errorf("creating template: %w", err)
	}

	return tpl, nil
}

func (s *templateService) GetByID(ctx context.Context, id uuid.UUID) (*TemplateDetail, error) {
	tpl, payload, err := s.Bytes(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := pdfform.ReadFields(payload)
	if err != nil {
		return nil, err
	}
	return &TemplateDetail{Template: tpl, Fields: fields}, nil
}

func (s *templateService) List(ctx context.Context) ([]domain.Template, error) {
	return s.templateRepo.List(ctx)
}

func (s *templateService) Bytes(ctx context.Context, id uuid.UUID) (*domain.Template, []byte, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	payload, err := s.storage.Download(ctx, tpl.Bucket, tpl.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading template %s: %w", id, err)
	}
	return tpl, payload, nil
}

func (s *templateService) UpdateSettings(ctx context.Context, id uuid.UUID, settings domain.TemplateSettings) error {
	return s.templateRepo.UpdateSettings(ctx, id, settings)
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	log.Printf("templateService.Delete: deleting template %s", id)

	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, id); err != nil {
		return err
	}
	// The row is gone; a leftover payload is only wasted storage.
	if err := s.storage.Delete(ctx, tpl.Bucket, tpl.ObjectKey); err != nil {
		log.Printf("templateService.Delete: failed to delete payload: %v", err)
	}
	return nil
}
