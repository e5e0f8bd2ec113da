package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Retrieval modes reported to metrics.
const (
	RetrievalSemantic = "semantic"
	RetrievalLexical  = "lexical"
)

// ContextSeparator joins retrieved chunks.
const ContextSeparator = "\n\n---\n\n"

// defaultRetryBackoff is the pause before retrying a timed-out query embedding.
const defaultRetryBackoff = 250 * time.Millisecond

// Retrieval is the context selected for one generation request.
type Retrieval struct {
	// Chunks are the included chunks in rank order.
	Chunks []domain.ScoredChunk

	// Context is the included chunk text joined with ContextSeparator.
	Context string

	// Mode is RetrievalSemantic or RetrievalLexical.
	Mode string
}

// Retriever selects the most relevant chunks of a document for a query.
type Retriever struct {
	store      driven.KnowledgeStore
	embeddings driven.EmbeddingService
	metrics    driven.Metrics

	topK         int
	maxChars     int
	embedTimeout time.Duration
	retryBackoff time.Duration
}

// NewRetriever creates a retriever. embeddings may be nil, in which case
// retrieval is lexical.
func NewRetriever(
	store driven.KnowledgeStore,
	embeddings driven.EmbeddingService,
	settings domain.RetrievalSettings,
	embedTimeout time.Duration,
	metrics driven.Metrics,
) *Retriever {
	r := &Retriever{
		store:        store,
		embeddings:   embeddings,
		metrics:      metrics,
		topK:         settings.TopK,
		maxChars:     settings.MaxContextChars,
		embedTimeout: embedTimeout,
		retryBackoff: defaultRetryBackoff,
	}
	if r.topK <= 0 {
		r.topK = domain.DefaultTopK
	}
	if r.maxChars <= 0 {
		r.maxChars = domain.DefaultMaxContextChars
	}
	if r.embedTimeout <= 0 {
		r.embedTimeout = domain.DefaultEmbeddingTimeout
	}
	if r.metrics == nil {
		r.metrics = driven.NopMetrics{}
	}
	return r
}

// Retrieve returns up to K chunks of the document ranked by similarity to
// query, ties broken by position. Chunks are included greedily in rank
// order until the next one would push the context over the character cap.
func (r *Retriever) Retrieve(ctx context.Context, documentID, query string) (*Retrieval, error) {
	embedding := r.embedQuery(ctx, query)

	ranked, err := r.store.Nearest(ctx, documentID, query, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("nearest chunks: %w", err)
	}
	mode := RetrievalLexical
	if rankedByVector(ranked, embedding) {
		mode = RetrievalSemantic
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Chunk.Position < ranked[j].Chunk.Position
	})

	result := &Retrieval{Mode: mode}
	var b strings.Builder
	used := 0
	for _, sc := range ranked {
		n := utf8.RuneCountInString(sc.Chunk.Content)
		if len(result.Chunks) > 0 {
			n += utf8.RuneCountInString(ContextSeparator)
		}
		if used+n > r.maxChars {
			break
		}
		if len(result.Chunks) > 0 {
			b.WriteString(ContextSeparator)
		}
		b.WriteString(sc.Chunk.Content)
		used += n
		result.Chunks = append(result.Chunks, sc)
	}
	result.Context = b.String()

	r.metrics.RetrievalCompleted(mode, len(result.Chunks))
	logger.Debug("retrieval: %s mode, %d of %d chunks, %d chars", mode, len(result.Chunks), len(ranked), used)
	return result, nil
}

// embedQuery returns the query vector, or nil when lexical scoring should
// be used. A timeout is retried once after a backoff.
func (r *Retriever) embedQuery(ctx context.Context, query string) []float32 {
	if r.embeddings == nil || strings.TrimSpace(query) == "" {
		return nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.retryBackoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
		vec, err := r.embeddings.Embed(callCtx, query)
		cancel()
		if err == nil && len(vec) > 0 {
			return vec
		}
		if !isTimeout(err) || ctx.Err() != nil {
			logger.Warn("query embedding unavailable, using lexical retrieval: %v", err)
			return nil
		}
		logger.Debug("query embedding timed out (attempt %d)", attempt+1)
	}
	logger.Warn("query embedding timed out twice, using lexical retrieval")
	return nil
}

// rankedByVector reports whether the store could have scored by cosine: the
// query has a vector and every returned chunk carries one of the same length.
// Documents are embedded completely or not at all, so the returned chunks
// stand for the whole document.
func rankedByVector(ranked []domain.ScoredChunk, embedding []float32) bool {
	if len(embedding) == 0 || len(ranked) == 0 {
		return false
	}
	for _, sc := range ranked {
		if len(sc.Chunk.Embedding) != len(embedding) {
			return false
		}
	}
	return true
}

func isTimeout(err error) bool {
	return errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
