// Command docugen ingests technical documentation and generates starter
// projects from it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/ai"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/config/file"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/fetch"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/metrics"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/memory"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/sqlite"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driving/cli"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/core/services"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors"
	"github.com/thecoder8890/neuralnotes.io/internal/synthesis"
	"github.com/thecoder8890/neuralnotes.io/internal/technology"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}

// bootstrap wires adapters and services from the resolved options and the
// settings in <data-dir>/config.toml.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("%v", err)
	}

	var (
		knowledge driven.KnowledgeStore
		bundles   driven.BundleStore
		closers   []func() error
	)
	switch opts.Store {
	case cli.StoreMemory:
		knowledge = memory.NewKnowledgeStore()
		bundles = memory.NewBundleStore()
	default:
		store, err := sqlite.NewStore(filepath.Join(opts.DataDir, "data"))
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		logger.Debug("store %s", store.Path())
		knowledge = store.KnowledgeStore()
		bundles = store.BundleStore()
		closers = append(closers, store.Close)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(registry)

	aiServices := ai.CreateServices(*settings)
	closers = append(closers, func() error {
		aiServices.Close()
		return nil
	})

	pipeline, err := buildPipeline(settings, aiServices.Embedding)
	if err != nil {
		return nil, errors.Join(err, closeAll(closers))
	}

	normaliserRegistry := normalisers.NewDefaultRegistry()
	ingest := services.NewIngestService(
		knowledge,
		fetch.New(settings.Limits.FetchTimeout),
		normaliserRegistry,
		pipeline,
		services.WithMaxSourceBytes(settings.Limits.MaxSourceBytes),
		services.WithIngestMetrics(recorder),
	)

	synthesizer, err := buildSynthesizer(opts.DataDir, settings, aiServices.LLM, recorder)
	if err != nil {
		return nil, errors.Join(err, closeAll(closers))
	}
	techs := technology.Default()
	retriever := services.NewRetriever(
		knowledge, aiServices.Embedding, settings.Retrieval, settings.Limits.EmbeddingTimeout, recorder)
	generation := services.NewGenerationService(
		knowledge, bundles, retriever, technology.NewResolver(techs), synthesizer, recorder)

	return &cli.Services{
		Ingest:     ingest,
		Generation: generation,
		Document:   services.NewDocumentService(knowledge),
		Settings:   settingsService,
		Config:     configStore,
		Gatherer:   registry,
		Close:      func() error { return closeAll(closers) },
	}, nil
}

// buildPipeline chunks with the configured budget and embeds when an
// embedding provider is available.
func buildPipeline(settings *domain.AppSettings, embeddings driven.EmbeddingService) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, embeddings)
	return registry.BuildPipeline(postprocessors.DefaultPipelineNames(registry), map[string]map[string]any{
		postprocessors.NameChunker: {
			"target_tokens": settings.Chunking.TargetTokens,
			"overlap":       settings.Chunking.OverlapFraction,
		},
	})
}

// buildSynthesizer uses the AI strategy with template fallback when an LLM
// is configured, templates alone otherwise.
func buildSynthesizer(
	dataDir string,
	settings *domain.AppSettings,
	llm driven.LLMService,
	recorder driven.Metrics,
) (driven.Synthesizer, error) {
	template := synthesis.NewTemplate(technology.Default().Unknown())
	if llm == nil {
		return synthesis.NewFallback(nil, template, recorder), nil
	}

	prompts, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"), synthesis.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	primary := synthesis.NewAI(llm, synthesis.WithTimeout(settings.Limits.GenerationTimeout))
	primary.SetPromptStore(prompts)
	return synthesis.NewFallback(primary, template, recorder), nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}
