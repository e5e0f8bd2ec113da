package postprocessors

import (
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors/chunker"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors/embedder"
)

// Processor names.
const (
	NameChunker  = "chunker"
	NameEmbedder = "embedder"
)

// RegisterDefaults registers all built-in processors with the registry.
// The embedder is registered only when an embedding service is available.
func RegisterDefaults(r *Registry, embeddings driven.EmbeddingService) {
	r.Register(NameChunker, buildChunker)
	if embeddings != nil {
		r.Register(NameEmbedder, func(cfg map[string]any) (driven.PostProcessor, error) {
			return buildEmbedder(embeddings, cfg)
		})
	}
}

// DefaultPipelineNames returns the processors the ingest pipeline runs.
func DefaultPipelineNames(r *Registry) []string {
	names := []string{NameChunker}
	if r.Has(NameEmbedder) {
		names = append(names, NameEmbedder)
	}
	return names
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - target_tokens (int): Tokens per chunk (default: 200)
//   - overlap (float): Fraction of the budget shared between chunks (default: 0.2)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "target_tokens"); size > 0 {
			opts = append(opts, chunker.WithTargetTokens(size))
		}
		if overlap, ok := getFloatFromConfig(cfg, "overlap"); ok {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
	}

	return chunker.New(opts...), nil
}

// buildEmbedder creates an embedder processor from generic config.
// Supported config keys:
//   - batch_size (int): Chunks per embedding request (default: 32)
//   - concurrency (int): Parallel embedding requests (default: 4)
func buildEmbedder(svc driven.EmbeddingService, cfg map[string]any) (driven.PostProcessor, error) {
	var opts []embedder.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "batch_size"); n > 0 {
			opts = append(opts, embedder.WithBatchSize(n))
		}
		if n := getIntFromConfig(cfg, "concurrency"); n > 0 {
			opts = append(opts, embedder.WithConcurrency(n))
		}
	}

	return embedder.New(svc, opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig extracts a float from generic config map.
func getFloatFromConfig(cfg map[string]any, key string) (float64, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
