package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/memory"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

func seedDocuments(t *testing.T) (*memory.KnowledgeStore, *DocumentService, *domain.Document) {
	t.Helper()
	store := memory.NewKnowledgeStore()
	ingest := newTestIngestService(store, &mockFetcher{content: springGuide, mime: "text/markdown"}, nil)
	doc, err := ingest.IngestURL(context.Background(), "https://spring.io/guide")
	require.NoError(t, err)
	return store, NewDocumentService(store), doc
}

func TestDocumentService_List(t *testing.T) {
	store, svc, doc := seedDocuments(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "failed", Status: domain.DocumentFailed, Error: "boom"}))

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []string{docs[0].ID, docs[1].ID}
	assert.ElementsMatch(t, []string{doc.ID, "failed"}, ids)
}

func TestDocumentService_Get(t *testing.T) {
	_, svc, doc := seedDocuments(t)

	got, err := svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, domain.DocumentReady, got.Status)

	for _, id := range []string{"", "  ", "missing"} {
		_, err := svc.Get(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, id)
	}
}

func TestDocumentService_GetContent(t *testing.T) {
	_, svc, doc := seedDocuments(t)

	content, err := svc.GetContent(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Contains(t, content, "@RestController")
	assert.Contains(t, content, "Tomcat")
}

func TestDocumentService_GetContent_RebuiltFromChunks(t *testing.T) {
	store := memory.NewKnowledgeStore()
	ctx := context.Background()
	doc := &domain.Document{ID: "doc-1", Status: domain.DocumentReady}
	require.NoError(t, store.Put(ctx, doc, []domain.Chunk{
		{ID: "doc-1-1", Content: "second", Position: 1},
		{ID: "doc-1-0", Content: "first", Position: 0},
	}))

	content, err := NewDocumentService(store).GetContent(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", content)
}

func TestDocumentService_GetContent_NotReady(t *testing.T) {
	store := memory.NewKnowledgeStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "pending", Status: domain.DocumentPending}))

	_, err := NewDocumentService(store).GetContent(ctx, "pending")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_Delete(t *testing.T) {
	store, svc, doc := seedDocuments(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, doc.ID))

	_, err := svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	_, err = store.GetChunks(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, doc.ID), domain.ErrDocumentNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, ""), domain.ErrDocumentNotFound)
}
