package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

// ExtractionInput is the DTO for document extraction requests.
type ExtractionInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ExtractionService defines the source-document extraction contract.
type ExtractionService interface {
	Extract(ctx context.Context, input ExtractionInput) (*domain.ExtractedData, error)
}

type extractionService struct {
	extractor port.DocumentExtractor
	cfg       *config.S3Config
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(extractor port.DocumentExtractor, cfg *config.S3Config) ExtractionService {
	return &extractionService{
		extractor: extractor,
		cfg:       cfg,
	}
}

func (s *extractionService) Extract(ctx context.Context, input ExtractionInput) (*domain.ExtractedData, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, ok := domain.AllowedContentTypes[detectedType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Seek back to beginning and read the full payload
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}
	fileBytes, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	log.Printf("extractionService.Extract: extracting %s (%s, %d bytes)",
		input.Header.Filename, detectedType, input.Header.Size)

	data, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:   fileBytes,
		ContentType: detectedType,
	})
	if err != nil {
		log.Printf("extractionService.Extract: extraction failed for %s: %v", input.Header.Filename, err)
		return nil, err
	}
	return data, nil
}
