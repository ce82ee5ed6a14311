package service_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/port"
	"tradeflow/internal/service"
	"tradeflow/mocks"
)

// memFile adapts an in-memory byte slice to multipart.File.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadInput(name string, payload []byte) (multipart.File, *multipart.FileHeader) {
	return memFile{bytes.NewReader(payload)}, &multipart.FileHeader{
		Filename: name,
		Size:     int64(len(payload)),
	}
}

func storageConfig() *config.S3Config {
	return &config.S3Config{Bucket: "test-bucket", MaxFileSizeMB: 1}
}

func TestExtractSuccess(t *testing.T) {
	payload := []byte("%PDF-1.7\nfake invoice")
	file, header := uploadInput("invoice.pdf", payload)

	extractor := new(mocks.MockDocumentExtractor)
	want := &domain.ExtractedData{CustomerName: "Jane Doe", LineItems: []domain.LineItem{}}
	extractor.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return in.ContentType == "application/pdf" && bytes.Equal(in.FileBytes, payload)
	})).Return(want, nil)

	svc := service.NewExtractionService(extractor, storageConfig())
	got, err := svc.Extract(context.Background(), service.ExtractionInput{File: file, Header: header})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.CustomerName)
	extractor.AssertExpectations(t)
}

func TestExtractRejectsUnsupportedExtension(t *testing.T) {
	file, header := uploadInput("invoice.docx", []byte("%PDF-1.7\n"))

	extractor := new(mocks.MockDocumentExtractor)
	svc := service.NewExtractionService(extractor, storageConfig())

	_, err := svc.Extract(context.Background(), service.ExtractionInput{File: file, Header: header})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractRejectsOversizedFile(t *testing.T) {
	payload := make([]byte, 2*1024*1024)
	copy(payload, []byte("%PDF-1.7\n"))
	file, header := uploadInput("invoice.pdf", payload)

	svc := service.NewExtractionService(new(mocks.MockDocumentExtractor), storageConfig())
	_, err := svc.Extract(context.Background(), service.ExtractionInput{File: file, Header: header})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestExtractRejectsContentMismatch(t *testing.T) {
	// .pdf name over non-PDF bytes fails the magic-byte check.
	file, header := uploadInput("invoice.pdf", []byte("MZ\x90\x00 not a pdf at all"))

	svc := service.NewExtractionService(new(mocks.MockDocumentExtractor), storageConfig())
	_, err := svc.Extract(context.Background(), service.ExtractionInput{File: file, Header: header})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestExtractPropagatesExtractorFailure(t *testing.T) {
	file, header := uploadInput("invoice.pdf", []byte("%PDF-1.7\n"))

	extractor := new(mocks.MockDocumentExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, domain.ErrExtractionFailed)

	svc := service.NewExtractionService(extractor, storageConfig())
	_, err := svc.Extract(context.Background(), service.ExtractionInput{File: file, Header: header})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
