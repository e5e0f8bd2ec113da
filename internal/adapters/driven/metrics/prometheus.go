// Package metrics provides a Prometheus-based driven.Metrics recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Ensure PrometheusRecorder implements the interface.
var _ driven.Metrics = (*PrometheusRecorder)(nil)

// PrometheusRecorder records ingestion and generation metrics.
type PrometheusRecorder struct {
	ingestionsTotal    *prometheus.CounterVec
	chunksTotal        *prometheus.CounterVec
	ingestDuration     *prometheus.HistogramVec
	generationsTotal   *prometheus.CounterVec
	generatedFiles     *prometheus.HistogramVec
	generationDuration *prometheus.HistogramVec
	fallbacksTotal     *prometheus.CounterVec
	retrievalsTotal    *prometheus.CounterVec
	retrievedChunks    prometheus.Histogram
}

// NewPrometheusRecorder registers DocuGen metrics on reg.
// Registering twice on the same registry panics, as with promauto.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		ingestionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docugen_ingestions_total",
				Help: "Documents ingested by content type and outcome",
			},
			[]string{"content_type", "outcome"},
		),
		chunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docugen_chunks_total",
				Help: "Chunks stored by content type",
			},
			[]string{"content_type"},
		),
		ingestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docugen_ingest_duration_seconds",
				Help:    "Time from source to ready or failed document",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docugen_generations_total",
				Help: "Project bundles generated by technology and strategy",
			},
			[]string{"technology", "strategy"},
		),
		generatedFiles: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docugen_generated_files",
				Help:    "Files per generated bundle",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"strategy"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docugen_generation_duration_seconds",
				Help:    "Time to produce a bundle",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"strategy"},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docugen_synthesis_fallbacks_total",
				Help: "AI synthesis failures answered by the template strategy",
			},
			[]string{"reason"},
		),
		retrievalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docugen_retrievals_total",
				Help: "Context retrievals by scoring mode",
			},
			[]string{"mode"},
		),
		retrievedChunks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docugen_retrieved_chunks",
				Help:    "Chunks placed in generation context",
				Buckets: prometheus.LinearBuckets(0, 2, 8),
			},
		),
	}
}

// IngestCompleted records one ingestion outcome.
func (p *PrometheusRecorder) IngestCompleted(contentType, outcome string, chunks int, elapsed time.Duration) {
	p.ingestionsTotal.WithLabelValues(contentType, outcome).Inc()
	if chunks > 0 {
		p.chunksTotal.WithLabelValues(contentType).Add(float64(chunks))
	}
	p.ingestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// GenerationCompleted records one generated bundle.
func (p *PrometheusRecorder) GenerationCompleted(technology, strategy string, files int, elapsed time.Duration) {
	p.generationsTotal.WithLabelValues(technology, strategy).Inc()
	p.generatedFiles.WithLabelValues(strategy).Observe(float64(files))
	p.generationDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// SynthesisFallback records a fallback to templates.
func (p *PrometheusRecorder) SynthesisFallback(reason string) {
	p.fallbacksTotal.WithLabelValues(reason).Inc()
}

// RetrievalCompleted records one retrieval.
func (p *PrometheusRecorder) RetrievalCompleted(mode string, chunks int) {
	p.retrievalsTotal.WithLabelValues(mode).Inc()
	p.retrievedChunks.Observe(float64(chunks))
}
