package driving

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// IngestService turns documentation sources into retrievable knowledge.
type IngestService interface {
	// IngestURL fetches, extracts, chunks and stores a URL.
	// Re-ingesting a URL whose document is Ready returns the existing document.
	IngestURL(ctx context.Context, url string) (*domain.Document, error)

	// IngestFile extracts, chunks and stores uploaded bytes.
	// contentType may be empty; it is then resolved from the name and bytes.
	IngestFile(ctx context.Context, name string, data []byte, contentType string) (*domain.Document, error)

	// IngestFiles ingests several uploads independently.
	// One result is returned per upload, in input order.
	IngestFiles(ctx context.Context, uploads []Upload) []IngestResult

	// AllowedExtensions returns the filename extensions accepted for uploads.
	AllowedExtensions() []string
}

// Upload is one uploaded file.
type Upload struct {
	Name        string
	Data        []byte
	ContentType string
}

// IngestResult is the outcome of one upload in a batch.
type IngestResult struct {
	Name     string
	Document *domain.Document
	Err      error
}
