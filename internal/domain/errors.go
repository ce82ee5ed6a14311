package domain

import "errors"

var (
	ErrMalformedDocument   = errors.New("document is not a parseable form")
	ErrExtractionFailed    = errors.New("document extraction failed")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
