package driving

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the concatenated content of all chunks.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error
}
