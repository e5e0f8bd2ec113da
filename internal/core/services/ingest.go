package services

import (
	"context"
	"crypto/md5" //nolint:gosec // Content addressing, not security.
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultAllowedExtensions are the upload extensions accepted by default.
var DefaultAllowedExtensions = []string{".pdf", ".md", ".markdown", ".txt", ".html", ".htm", ".rst", ".docx"}

// defaultBatchConcurrency bounds parallel uploads in IngestFiles.
const defaultBatchConcurrency = 4

// DefaultIngestTimeout bounds one shared ingestion run.
const DefaultIngestTimeout = 10 * time.Minute

// IngestService extracts, chunks and stores documentation sources.
//
// Document IDs are content addressed: the MD5 of the URL for URL sources
// and of the bytes for uploads. Ingesting the same source twice returns
// the existing Ready document. Concurrent ingestion of one source is
// collapsed into a single run, and writes to one document are serialised.
type IngestService struct {
	store    driven.KnowledgeStore
	fetcher  driven.Fetcher
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	metrics  driven.Metrics

	maxSourceBytes    int64
	allowedExtensions []string
	timeout           time.Duration

	group singleflight.Group
	locks *keyedMutex
	now   func() time.Time
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithMaxSourceBytes caps source size.
func WithMaxSourceBytes(n int64) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.maxSourceBytes = n
		}
	}
}

// WithAllowedExtensions replaces the accepted upload extensions.
func WithAllowedExtensions(exts []string) IngestOption {
	return func(s *IngestService) {
		if len(exts) > 0 {
			s.allowedExtensions = exts
		}
	}
}

// WithIngestTimeout bounds a single ingestion run, independent of callers.
func WithIngestTimeout(d time.Duration) IngestOption {
	return func(s *IngestService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithIngestMetrics sets the metrics recorder.
func WithIngestMetrics(m driven.Metrics) IngestOption {
	return func(s *IngestService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewIngestService creates a new ingest service.
// fetcher may be nil when only uploads are accepted.
func NewIngestService(
	store driven.KnowledgeStore,
	fetcher driven.Fetcher,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:             store,
		fetcher:           fetcher,
		registry:          registry,
		pipeline:          pipeline,
		metrics:           driven.NopMetrics{},
		maxSourceBytes:    domain.DefaultMaxSourceBytes,
		allowedExtensions: DefaultAllowedExtensions,
		timeout:           DefaultIngestTimeout,
		locks:             newKeyedMutex(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowedExtensions returns the filename extensions accepted for uploads.
func (s *IngestService) AllowedExtensions() []string {
	return slices.Clone(s.allowedExtensions)
}

// IngestURL fetches and ingests a documentation URL.
func (s *IngestService) IngestURL(ctx context.Context, rawURL string) (*domain.Document, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: not an http(s) URL: %q", domain.ErrInvalidInput, rawURL)
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: URL ingestion not configured", domain.ErrInvalidInput)
	}

	id := contentID([]byte(rawURL))
	return s.once(ctx, id, func(ctx context.Context) (*domain.RawDocument, error) {
		logger.Debug("fetching %s", rawURL)
		return s.fetcher.Fetch(ctx, rawURL, s.maxSourceBytes)
	})
}

// IngestFile ingests uploaded bytes. The name's extension must be allowed.
func (s *IngestService) IngestFile(ctx context.Context, name string, data []byte, contentType string) (*domain.Document, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: missing file name", domain.ErrInvalidInput)
	}
	ext := strings.ToLower(path.Ext(name))
	if !slices.Contains(s.allowedExtensions, ext) {
		return nil, fmt.Errorf("%w: file type %q not allowed (allowed: %s)",
			domain.ErrInvalidInput, ext, strings.Join(s.allowedExtensions, ", "))
	}
	if int64(len(data)) > s.maxSourceBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", domain.ErrSourceTooLarge, name, len(data), s.maxSourceBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrUnreadableSource, name)
	}

	id := contentID(data)
	return s.once(ctx, id, func(context.Context) (*domain.RawDocument, error) {
		return &domain.RawDocument{
			URI:      name,
			MIMEType: contentType,
			Content:  data,
		}, nil
	})
}

// IngestFiles ingests uploads in parallel. A failing upload does not
// affect the others.
func (s *IngestService) IngestFiles(ctx context.Context, uploads []driving.Upload) []driving.IngestResult {
	results := make([]driving.IngestResult, len(uploads))

	var g errgroup.Group
	g.SetLimit(defaultBatchConcurrency)
	for i, up := range uploads {
		g.Go(func() error {
			doc, err := s.IngestFile(ctx, up.Name, up.Data, up.ContentType)
			results[i] = driving.IngestResult{Name: up.Name, Document: doc, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// once collapses concurrent ingestion of the same ID into one run. The run
// is detached from every caller and bounded by the service timeout, so a
// caller that gives up returns its own context error while the others keep
// waiting for the result.
func (s *IngestService) once(
	ctx context.Context,
	id string,
	load func(context.Context) (*domain.RawDocument, error),
) (*domain.Document, error) {
	ch := s.group.DoChan(id, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.ingest(runCtx, id, load)
	})

	select {
	case <-ctx.Done():
		logger.Debug("ingest %s: caller left, run continues", id)
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			logger.Debug("ingest %s: joined in-flight run", id)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		doc := *res.Val.(*domain.Document)
		return &doc, nil
	}
}

// ingest runs the write path for one document under its lock.
func (s *IngestService) ingest(
	ctx context.Context,
	id string,
	load func(context.Context) (*domain.RawDocument, error),
) (*domain.Document, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	// 1. SHORT-CIRCUIT if already Ready
	existing, err := s.store.GetDocument(ctx, id)
	switch {
	case err == nil && existing.IsReady():
		logger.Debug("ingest %s: already ready", id)
		return existing, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get document: %w", err)
	}

	// 2. LOAD source bytes
	start := s.now()
	raw, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if int64(len(raw.Content)) > s.maxSourceBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrSourceTooLarge, raw.URI, s.maxSourceBytes)
	}

	// 3. RECORD pending state
	doc := &domain.Document{
		ID:          id,
		URI:         raw.URI,
		ContentType: raw.MIMEType,
		Status:      domain.DocumentPending,
		Size:        int64(len(raw.Content)),
		CreatedAt:   start,
		UpdatedAt:   start,
	}
	if existing != nil {
		doc.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	chunks, err := s.process(ctx, doc, raw)
	if err != nil {
		s.fail(ctx, doc, err, start)
		return nil, err
	}

	// 6. PUT atomically: chunks become visible and the document Ready together
	doc.ChunkCount = len(chunks)
	doc.UpdatedAt = s.now()
	if err := s.store.Put(ctx, doc, chunks); err != nil {
		err = fmt.Errorf("store chunks: %w", err)
		s.fail(ctx, doc, err, start)
		return nil, err
	}
	doc.Status = domain.DocumentReady

	s.metrics.IngestCompleted(doc.ContentType, string(domain.DocumentReady), len(chunks), s.now().Sub(start))
	logger.Info("Ingested %s as %s (%d chunks)", doc.URI, doc.ID, len(chunks))
	return doc, nil
}

// process normalises and chunks a raw document, filling doc from the result.
func (s *IngestService) process(ctx context.Context, doc *domain.Document, raw *domain.RawDocument) ([]domain.Chunk, error) {
	// 4. NORMALISE (produces Document with Content)
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}
	normalised := result.Document
	doc.Title = normalised.Title
	doc.ContentType = normalised.ContentType
	doc.Content = normalised.Content
	doc.Metadata = normalised.Metadata

	// 5. RUN POST-PROCESSOR PIPELINE (chunks, then embeddings)
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrUnreadableSource, raw.URI)
	}
	return chunks, nil
}

// fail records the failed state. It runs even if ctx was cancelled.
func (s *IngestService) fail(ctx context.Context, doc *domain.Document, cause error, start time.Time) {
	doc.Status = domain.DocumentFailed
	doc.Error = cause.Error()
	doc.Content = ""
	doc.UpdatedAt = s.now()
	if err := s.store.SaveDocument(context.WithoutCancel(ctx), doc); err != nil {
		logger.Error("ingest %s: record failure: %v", doc.ID, err)
	}
	s.metrics.IngestCompleted(doc.ContentType, string(domain.DocumentFailed), 0, s.now().Sub(start))
	logger.Warn("Ingest of %s failed: %v", doc.URI, cause)
}

// contentID returns the hex MD5 of data.
func contentID(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // Content addressing, not security.
	return hex.EncodeToString(sum[:])
}
