package driven

import "time"

// Metrics records operational counters for ingestion and generation.
type Metrics interface {
	// IngestCompleted records one ingestion outcome ("ready" or "failed").
	IngestCompleted(contentType, outcome string, chunks int, elapsed time.Duration)

	// GenerationCompleted records one generation with the strategy that produced it.
	GenerationCompleted(technology, strategy string, files int, elapsed time.Duration)

	// SynthesisFallback records a primary strategy failure that fell back to templates.
	SynthesisFallback(reason string)

	// RetrievalCompleted records retrieval mode ("semantic" or "lexical") and chunks used.
	RetrievalCompleted(mode string, chunks int)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) IngestCompleted(string, string, int, time.Duration)     {}
func (NopMetrics) GenerationCompleted(string, string, int, time.Duration) {}
func (NopMetrics) SynthesisFallback(string)                               {}
func (NopMetrics) RetrievalCompleted(string, int)                         {}
