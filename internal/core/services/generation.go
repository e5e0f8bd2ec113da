package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thecoder8890/neuralnotes.io/internal/assembler"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure GenerationService implements the interface.
var _ driving.GenerationService = (*GenerationService)(nil)

// GenerationService runs the read path: retrieve, resolve, synthesize, assemble.
type GenerationService struct {
	store       driven.KnowledgeStore
	bundles     driven.BundleStore
	retriever   *Retriever
	resolver    driven.TechnologyResolver
	synthesizer driven.Synthesizer
	assembler   *assembler.Assembler
	metrics     driven.Metrics
}

// NewGenerationService creates a new generation service.
// A nil metrics records nothing.
func NewGenerationService(
	store driven.KnowledgeStore,
	bundles driven.BundleStore,
	retriever *Retriever,
	resolver driven.TechnologyResolver,
	synthesizer driven.Synthesizer,
	metrics driven.Metrics,
) *GenerationService {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &GenerationService{
		store:       store,
		bundles:     bundles,
		retriever:   retriever,
		resolver:    resolver,
		synthesizer: synthesizer,
		assembler:   assembler.New(),
		metrics:     metrics,
	}
}

// Generate produces and stores a project bundle. The bundle is stored only
// once fully assembled, and not at all if ctx ends first.
func (s *GenerationService) Generate(ctx context.Context, req driving.GenerateRequest) (*domain.ProjectBundle, error) {
	start := time.Now()
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}

	// 1. CHECK the document is Ready
	doc, err := s.readyDocument(ctx, strings.TrimSpace(req.DocumentID))
	if err != nil {
		return nil, err
	}

	// 2. RETRIEVE context
	retrieval, err := s.retriever.Retrieve(ctx, doc.ID, prompt)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	// 3. RESOLVE technology
	profile, hintWarning := s.resolver.Resolve(req.Technology, prompt)
	logger.Debug("generate: technology %s", profile.ID)

	// 4. SYNTHESIZE files
	result, err := s.synthesizer.Synthesize(ctx, driven.SynthesisRequest{
		Prompt:  prompt,
		Context: retrieval.Context,
		Profile: profile,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	// 5. ASSEMBLE bundle
	var warnings []string
	if hintWarning != "" {
		warnings = append(warnings, hintWarning)
	}
	warnings = append(warnings, result.Warnings...)
	bundle, err := s.assembler.Assemble(assembler.Input{
		DocumentID:   doc.ID,
		Prompt:       prompt,
		Profile:      profile,
		Files:        result.Files,
		Instructions: result.Instructions,
		Strategy:     result.Strategy,
		Warnings:     warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	// 6. STORE unless the request was abandoned
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: generation abandoned: %w", domain.ErrTimeout, err)
	}
	if err := s.bundles.SaveBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("save bundle: %w", err)
	}

	s.metrics.GenerationCompleted(string(bundle.Technology), string(bundle.Strategy), len(bundle.Files), time.Since(start))
	logger.Info("Generated bundle %s (%s, %s strategy, %d files)",
		bundle.ID, bundle.Technology, bundle.Strategy, len(bundle.Files))
	return bundle, nil
}

// GetBundle retrieves a previously generated bundle.
func (s *GenerationService) GetBundle(ctx context.Context, bundleID string) (*domain.ProjectBundle, error) {
	if strings.TrimSpace(bundleID) == "" {
		return nil, domain.ErrBundleNotFound
	}
	return s.bundles.GetBundle(ctx, bundleID)
}

// FetchBundle returns the zip archive of a bundle.
func (s *GenerationService) FetchBundle(ctx context.Context, bundleID string) ([]byte, error) {
	bundle, err := s.GetBundle(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	return bundle.Archive, nil
}

// ListBundles returns bundles for a document, or all bundles when empty.
func (s *GenerationService) ListBundles(ctx context.Context, documentID string) ([]domain.ProjectBundle, error) {
	return s.bundles.ListBundles(ctx, documentID)
}

// Technologies returns the registered technology profiles.
func (s *GenerationService) Technologies() []*domain.TechnologyProfile {
	return s.resolver.Profiles()
}

func (s *GenerationService) readyDocument(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, domain.ErrDocumentNotFound
	}
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if !doc.IsReady() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrDocumentNotFound, id, doc.Status)
	}
	return doc, nil
}
