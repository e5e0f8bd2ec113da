package domain

import "time"

// DocumentStatus is the ingestion lifecycle state of a document.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentPending indicates extraction or chunking is still running.
	DocumentPending DocumentStatus = "pending"

	// DocumentReady indicates all chunks are stored and retrievable.
	DocumentReady DocumentStatus = "ready"

	// DocumentFailed indicates ingestion stopped with an error.
	DocumentFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentReady, DocumentFailed:
		return true
	default:
		return false
	}
}

// Document represents one ingested documentation source.
// Once Ready it is immutable except for deletion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// URI is the source descriptor: a URL or an uploaded filename.
	URI string `json:"uri"`

	// Title is the human-readable title recovered during extraction.
	Title string `json:"title"`

	// ContentType is the resolved MIME type of the source.
	ContentType string `json:"content_type"`

	// Status is the ingestion lifecycle state.
	Status DocumentStatus `json:"status"`

	// Content is the full extracted text before chunking.
	// It is not rendered in API responses.
	Content string `json:"-"`

	// Size is the raw source size in bytes.
	Size int64 `json:"size"`

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int `json:"chunk_count"`

	// Error holds the failure reason when Status is DocumentFailed.
	Error string `json:"error,omitempty"`

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the document last changed status.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReady reports whether the document's chunks are retrievable.
func (d *Document) IsReady() bool {
	return d != nil && d.Status == DocumentReady
}

// Chunk metadata keys.
const (
	ChunkMetaHeading = "heading"
	ChunkMetaPage    = "page"
	ChunkMetaTokens  = "tokens"
)

// Chunk represents a retrievable unit within a document.
// Chunks are never mutated after creation and are deleted with their parent.
type Chunk struct {
	// ID is derived from the document ID and position.
	ID string `json:"id"`

	// DocumentID links to the parent Document.
	DocumentID string `json:"document_id"`

	// Content is the text content of this chunk.
	Content string `json:"content"`

	// Position is the sequence index within the document.
	Position int `json:"position"`

	// Embedding is the vector representation for semantic retrieval.
	Embedding []float32 `json:"-"`

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
