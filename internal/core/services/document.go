package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	store driven.KnowledgeStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.KnowledgeStore) *DocumentService {
	return &DocumentService{store: store}
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.ErrDocumentNotFound
	}
	return s.store.GetDocument(ctx, documentID)
}

// GetContent returns the extracted text of a document. When the full text
// was not retained it is rebuilt from the chunks in position order.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.Content != "" {
		return doc.Content, nil
	}
	if !doc.IsReady() {
		return "", fmt.Errorf("%w: %s is %s", domain.ErrDocumentNotFound, documentID, doc.Status)
	}

	chunks, err := s.store.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Position < chunks[j].Position
	})

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(chunk.Content)
	}
	return builder.String(), nil
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return domain.ErrDocumentNotFound
	}
	if err := s.store.Delete(ctx, documentID); err != nil {
		return err
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}
