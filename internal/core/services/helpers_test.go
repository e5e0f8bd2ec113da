package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/memory"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors/chunker"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors/embedder"
)

const springGuide = `# Building a RESTful Web Service with Spring Boot

Spring Boot makes it easy to create stand-alone applications. Add the
spring-boot-starter-web dependency to your Maven pom.xml.

## Create a Resource Controller

Annotate the class with @RestController and map requests with @GetMapping.
The controller returns domain objects that Jackson serialises to JSON.

## Run the Application

Use mvn spring-boot:run to start the embedded Tomcat server on port 8080.`

// mockFetcher implements driven.Fetcher for testing.
type mockFetcher struct {
	mu      sync.Mutex
	content string
	mime    string
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, url string, _ int64) (*domain.RawDocument, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RawDocument{URI: url, MIMEType: m.mime, Content: []byte(m.content)}, nil
}

// mockEmbeddingService implements driven.EmbeddingService with bag-of-words
// vectors so related texts score higher.
type mockEmbeddingService struct {
	mu       sync.Mutex
	failures []error // returned, in order, before succeeding
	embedErr error   // returned by every call when set
	calls    int
}

const mockDimensions = 16

func (m *mockEmbeddingService) next() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return m.embedErr
	}
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}
	return nil
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if err := m.next(); err != nil {
		return nil, err
	}
	return bagOfWords(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := m.next(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = bagOfWords(text)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return mockDimensions }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func bagOfWords(text string) []float32 {
	vec := make([]float32, mockDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,:;!?#@()")))
		vec[h.Sum32()%mockDimensions]++
	}
	return vec
}

// recordingMetrics implements driven.Metrics and keeps what it saw.
type recordingMetrics struct {
	mu          sync.Mutex
	ingests     []string
	generations []string
	retrievals  []string
}

func (r *recordingMetrics) IngestCompleted(_ string, outcome string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingests = append(r.ingests, outcome)
}

func (r *recordingMetrics) GenerationCompleted(_ string, strategy string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations = append(r.generations, strategy)
}

func (r *recordingMetrics) SynthesisFallback(string) {}

func (r *recordingMetrics) RetrievalCompleted(mode string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retrievals = append(r.retrievals, mode)
}

// failingPutStore wraps a KnowledgeStore and fails Put.
type failingPutStore struct {
	*memory.KnowledgeStore
	err error
}

func (f *failingPutStore) Put(context.Context, *domain.Document, []domain.Chunk) error {
	return f.err
}

// newTestIngestService wires an ingest service over a memory store with the
// default normalisers and a small-chunk pipeline.
func newTestIngestService(
	store driven.KnowledgeStore,
	fetcher driven.Fetcher,
	embeddings driven.EmbeddingService,
	opts ...IngestOption,
) *IngestService {
	processors := []driven.PostProcessor{chunker.New(chunker.WithTargetTokens(40), chunker.WithOverlap(0.1))}
	if embeddings != nil {
		processors = append(processors, embedder.New(embeddings, embedder.WithRetryBackoff(time.Millisecond)))
	}
	return NewIngestService(
		store,
		fetcher,
		normalisers.NewDefaultRegistry(),
		postprocessors.NewPipeline(processors...),
		opts...,
	)
}
