// Package embedder attaches vector embeddings to chunks.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Defaults.
const (
	DefaultBatchSize    = 32
	DefaultConcurrency  = 4
	DefaultRetryBackoff = 250 * time.Millisecond
)

// Processor embeds chunk contents in parallel batches.
// A document is embedded completely or not at all: when any batch fails the
// chunks are returned without vectors and retrieval for that document is lexical.
// A batch that times out is retried once after a backoff.
type Processor struct {
	svc          driven.EmbeddingService
	batchSize    int
	concurrency  int
	retryBackoff time.Duration
}

// Option configures the embedder processor.
type Option func(*Processor)

// WithBatchSize sets the number of chunks per embedding request.
func WithBatchSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithConcurrency sets the number of parallel embedding requests.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithRetryBackoff sets the pause before retrying a timed-out batch.
func WithRetryBackoff(d time.Duration) Option {
	return func(p *Processor) {
		if d >= 0 {
			p.retryBackoff = d
		}
	}
}

// New creates an embedder processor backed by svc.
func New(svc driven.EmbeddingService, opts ...Option) *Processor {
	p := &Processor{
		svc:          svc,
		batchSize:    DefaultBatchSize,
		concurrency:  DefaultConcurrency,
		retryBackoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "embedder"
}

// Process returns copies of chunks with Embedding populated.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 || p.svc == nil {
		return chunks, nil
	}

	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Content)
			}
			vecs, err := p.embedBatch(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("%w: %d vectors for %d texts", domain.ErrMalformedResponse, len(vecs), len(texts))
			}
			copy(vectors[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("embedding %s failed, storing chunks without vectors: %v", doc.ID, err)
		return chunks, nil
	}

	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	for i := range out {
		out[i].Embedding = vectors[i]
	}
	logger.Debug("embedded %d chunks of %s with %s", len(out), doc.ID, p.svc.ModelName())
	return out, nil
}

// embedBatch embeds texts, retrying once when the first attempt times out.
func (p *Processor) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := p.svc.EmbedBatch(ctx, texts)
	if err == nil || !isTimeout(err) || ctx.Err() != nil {
		return vecs, err
	}
	logger.Debug("embedding batch of %d timed out, retrying", len(texts))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.retryBackoff):
	}
	return p.svc.EmbedBatch(ctx, texts)
}

func isTimeout(err error) bool {
	return errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
