package mcp

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	document *domain.Document
	err      error
	urls     []string
}

func (m *mockIngestService) IngestURL(_ context.Context, url string) (*domain.Document, error) {
	m.urls = append(m.urls, url)
	return m.document, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string, _ []byte, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockIngestService) IngestFiles(_ context.Context, uploads []driving.Upload) []driving.IngestResult {
	results := make([]driving.IngestResult, len(uploads))
	for i, up := range uploads {
		results[i] = driving.IngestResult{Name: up.Name, Document: m.document, Err: m.err}
	}
	return results
}

func (m *mockIngestService) AllowedExtensions() []string {
	return []string{".md"}
}

// mockGenerationService is a mock implementation of driving.GenerationService.
type mockGenerationService struct {
	bundle   *domain.ProjectBundle
	bundles  []domain.ProjectBundle
	profiles []*domain.TechnologyProfile
	err      error
	request  driving.GenerateRequest
}

func (m *mockGenerationService) Generate(_ context.Context, req driving.GenerateRequest) (*domain.ProjectBundle, error) {
	m.request = req
	return m.bundle, m.err
}

func (m *mockGenerationService) GetBundle(_ context.Context, _ string) (*domain.ProjectBundle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bundle, nil
}

func (m *mockGenerationService) FetchBundle(_ context.Context, _ string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bundle.Archive, nil
}

func (m *mockGenerationService) ListBundles(_ context.Context, _ string) ([]domain.ProjectBundle, error) {
	return m.bundles, m.err
}

func (m *mockGenerationService) Technologies() []*domain.TechnologyProfile {
	return m.profiles
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
