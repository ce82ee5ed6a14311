package domain

// FieldKind classifies a form field by how it can be filled.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindUnknown  FieldKind = "unknown"
)

// SourceFileType represents the allowed source document types for extraction.
type SourceFileType string

const (
	SourceFileTypePDF SourceFileType = "pdf"
	SourceFileTypeJPG SourceFileType = "jpg"
	SourceFileTypePNG SourceFileType = "png"
)

// AllowedSourceTypes maps SourceFileType to its MIME content type.
var AllowedSourceTypes = map[SourceFileType]string{
	SourceFileTypePDF: "application/pdf",
	SourceFileTypeJPG: "image/jpeg",
	SourceFileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to SourceFileType.
var AllowedContentTypes = map[string]SourceFileType{
	"application/pdf": SourceFileTypePDF,
	"image/jpeg":      SourceFileTypeJPG,
	"image/png":       SourceFileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to SourceFileType.
var AllowedExtensions = map[string]SourceFileType{
	"pdf":  SourceFileTypePDF,
	"jpg":  SourceFileTypeJPG,
	"jpeg": SourceFileTypeJPG,
	"png":  SourceFileTypePNG,
}
