package driving

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// GenerateRequest is one project generation request.
type GenerateRequest struct {
	// DocumentID is a previously ingested, Ready document.
	DocumentID string

	// Prompt describes the project to build.
	Prompt string

	// Technology is an optional explicit hint. When valid it is authoritative.
	Technology string
}

// GenerationService produces project bundles grounded on ingested documentation.
type GenerationService interface {
	// Generate retrieves context, resolves the technology, synthesizes files
	// and assembles a bundle. An unknown or non-Ready document returns
	// domain.ErrDocumentNotFound and creates no bundle.
	Generate(ctx context.Context, req GenerateRequest) (*domain.ProjectBundle, error)

	// GetBundle retrieves a previously generated bundle.
	GetBundle(ctx context.Context, bundleID string) (*domain.ProjectBundle, error)

	// FetchBundle returns the zip archive of a bundle.
	FetchBundle(ctx context.Context, bundleID string) ([]byte, error)

	// ListBundles returns bundles for a document, or all bundles when empty.
	ListBundles(ctx context.Context, documentID string) ([]domain.ProjectBundle, error)

	// Technologies returns the registered technology profiles.
	Technologies() []*domain.TechnologyProfile
}
