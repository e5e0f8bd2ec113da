package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/similarity"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// knowledgeStore implements driven.KnowledgeStore.
type knowledgeStore struct {
	db *sql.DB
}

var _ driven.KnowledgeStore = (*knowledgeStore)(nil)

const documentColumns = `id, uri, title, content_type, status, content, size, chunk_count, error, metadata, created_at, updated_at`

// sqlExecer is satisfied by *sql.DB and *sql.Tx.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveDocument stores or updates document metadata. A document leaving the
// Ready state loses its chunks in the same transaction.
func (s *knowledgeStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return err
	}
	if !doc.IsReady() {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
			return fmt.Errorf("clearing chunks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Put replaces the document's chunks and marks it Ready in one transaction.
func (s *knowledgeStore) Put(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	ready := *doc
	ready.Status = domain.DocumentReady
	ready.Error = ""
	ready.ChunkCount = len(chunks)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	// The document row must exist before chunks reference it.
	if err := upsertDocument(ctx, tx, &ready); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, doc.ID, chunk.Position, chunk.Content,
			float32SliceToBytes(chunk.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *knowledgeStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocuments returns all documents ordered by creation time.
// Extracted content is omitted.
func (s *knowledgeStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uri, title, content_type, status, '', size, chunk_count, error, metadata, created_at, updated_at
		FROM documents ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// GetChunks returns a Ready document's chunks in position order.
func (s *knowledgeStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	return readyChunks(ctx, tx, documentID)
}

// Nearest ranks a Ready document's chunks against the query.
func (s *knowledgeStore) Nearest(
	ctx context.Context,
	documentID, query string,
	embedding []float32,
	k int,
) ([]domain.ScoredChunk, error) {
	chunks, err := s.GetChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return similarity.Rank(chunks, query, embedding, k), nil
}

// Delete removes a document; its chunks follow by cascade.
func (s *knowledgeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func upsertDocument(ctx context.Context, db sqlExecer, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uri = excluded.uri,
			title = excluded.title,
			content_type = excluded.content_type,
			status = excluded.status,
			content = excluded.content,
			size = excluded.size,
			chunk_count = excluded.chunk_count,
			error = excluded.error,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.ID, doc.URI, doc.Title, doc.ContentType, string(doc.Status), doc.Content,
		doc.Size, doc.ChunkCount, doc.Error, string(metadataJSON),
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// readyChunks loads chunks after checking the document is Ready, both
// within the caller's transaction.
func readyChunks(ctx context.Context, tx *sql.Tx, documentID string) ([]domain.Chunk, error) {
	var status string
	err := tx.QueryRowContext(ctx, "SELECT status FROM documents WHERE id = ?", documentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && domain.DocumentStatus(status) != domain.DocumentReady) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document status: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, document_id, position, content, embedding, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status, metadataJSON string

	if err := row.Scan(&doc.ID, &doc.URI, &doc.Title, &doc.ContentType, &status, &doc.Content,
		&doc.Size, &doc.ChunkCount, &doc.Error, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return &doc, nil
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position, &chunk.Content,
		&embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}
	return &chunk, nil
}
