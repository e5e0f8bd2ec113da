package driven

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// KnowledgeStore persists documents and their chunks and answers
// nearest-neighbour queries over one document's chunks.
//
// Implementations must honour:
//   - Put is atomic: after it returns, every chunk of the document is
//     visible and the document is Ready, or nothing changed.
//   - Nearest only sees Ready documents and never mixes documents.
//   - Storage failures are returned, never swallowed.
type KnowledgeStore interface {
	// SaveDocument stores or updates document metadata without chunks.
	// Used for the pending and failed lifecycle states.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// Put replaces the document's chunks and marks it Ready in one step.
	Put(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID in any state.
	// Returns domain.ErrDocumentNotFound for unknown IDs.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by creation time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetChunks returns a Ready document's chunks in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Nearest returns up to k chunks of a Ready document ordered by
	// descending similarity to the query, ties broken by position.
	// A nil embedding selects lexical scoring.
	// Returns domain.ErrDocumentNotFound if the document is unknown or not Ready.
	Nearest(ctx context.Context, documentID, query string, embedding []float32, k int) ([]domain.ScoredChunk, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, id string) error
}

// BundleStore persists assembled project bundles.
type BundleStore interface {
	// SaveBundle stores a fully assembled bundle.
	SaveBundle(ctx context.Context, bundle *domain.ProjectBundle) error

	// GetBundle retrieves a bundle by ID including its archive.
	// Returns domain.ErrBundleNotFound for unknown IDs.
	GetBundle(ctx context.Context, id string) (*domain.ProjectBundle, error)

	// ListBundles returns bundles generated from a document, newest first.
	// An empty documentID lists all bundles.
	ListBundles(ctx context.Context, documentID string) ([]domain.ProjectBundle, error)
}
