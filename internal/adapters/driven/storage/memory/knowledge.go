package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/similarity"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeStore.
// Put builds the complete chunk slice before taking the write lock, so
// readers see either the old state or the new one.
type KnowledgeStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewKnowledgeStore creates a new in-memory knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates document metadata. Chunks of a document
// that leaves the Ready state are dropped.
func (s *KnowledgeStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	stored := cloneDocument(*doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = stored
	if !stored.IsReady() {
		delete(s.chunks, doc.ID)
	}
	return nil
}

// Put replaces the document's chunks and marks it Ready.
func (s *KnowledgeStore) Put(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	stored := cloneDocument(*doc)
	stored.Status = domain.DocumentReady
	stored.Error = ""
	stored.ChunkCount = len(chunks)

	replacement := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.DocumentID = doc.ID
		c.Embedding = slices.Clone(c.Embedding)
		replacement[i] = c
	}
	sort.SliceStable(replacement, func(i, j int) bool {
		return replacement[i].Position < replacement[j].Position
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = stored
	s.chunks[doc.ID] = replacement
	return nil
}

// GetDocument retrieves a document by ID.
func (s *KnowledgeStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	doc = cloneDocument(doc)
	return &doc, nil
}

// ListDocuments returns all documents ordered by creation time.
func (s *KnowledgeStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, cloneDocument(doc))
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// GetChunks returns a Ready document's chunks in position order.
func (s *KnowledgeStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, err := s.readyChunks(documentID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(chunks), nil
}

// Nearest ranks a Ready document's chunks against the query.
func (s *KnowledgeStore) Nearest(
	ctx context.Context,
	documentID, query string,
	embedding []float32,
	k int,
) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	chunks, err := s.readyChunks(documentID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// The slice is replaced, never mutated, so ranking outside the lock is safe.
	return similarity.Rank(chunks, query, embedding, k), nil
}

// Delete removes a document and its chunks.
func (s *KnowledgeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// readyChunks must be called with the read lock held.
func (s *KnowledgeStore) readyChunks(documentID string) ([]domain.Chunk, error) {
	doc, ok := s.documents[documentID]
	if !ok || !doc.IsReady() {
		return nil, domain.ErrDocumentNotFound
	}
	return s.chunks[documentID], nil
}

func cloneDocument(doc domain.Document) domain.Document {
	if doc.Metadata != nil {
		meta := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		doc.Metadata = meta
	}
	return doc
}
