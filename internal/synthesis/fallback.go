// Package synthesis turns a prompt, retrieved documentation and a
// technology profile into project files.
//
// The AI strategy asks a language model for a JSON manifest. The Template
// strategy renders the profile's skeleton. Fallback composes the two so a
// generation request always yields files.
package synthesis

import (
	"context"
	"fmt"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure Fallback implements the interface.
var _ driven.Synthesizer = (*Fallback)(nil)

// Fallback tries a primary synthesizer and, on any error, the secondary.
type Fallback struct {
	primary   driven.Synthesizer
	secondary driven.Synthesizer
	metrics   driven.Metrics
}

// NewFallback composes primary and secondary. A nil primary means the
// secondary is used directly. A nil metrics records nothing.
func NewFallback(primary, secondary driven.Synthesizer, metrics driven.Metrics) *Fallback {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &Fallback{primary: primary, secondary: secondary, metrics: metrics}
}

// Name identifies the composition.
func (f *Fallback) Name() string {
	if f.primary == nil {
		return f.secondary.Name()
	}
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Synthesize returns the primary result, or the secondary result with a
// warning naming the primary failure.
func (f *Fallback) Synthesize(ctx context.Context, req driven.SynthesisRequest) (*driven.SynthesisResult, error) {
	if f.primary == nil {
		return f.secondary.Synthesize(ctx, req)
	}

	result, err := f.primary.Synthesize(ctx, req)
	if err == nil {
		return result, nil
	}

	reason := domain.ErrorCode(err)
	logger.Warn("%s synthesis failed, falling back to %s: %v", f.primary.Name(), f.secondary.Name(), err)
	f.metrics.SynthesisFallback(reason)

	// The secondary runs even if ctx has expired; it must not depend on it.
	result, fbErr := f.secondary.Synthesize(context.WithoutCancel(ctx), req)
	if fbErr != nil {
		return nil, fmt.Errorf("%s fallback: %w", f.secondary.Name(), fbErr)
	}
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("%s generation unavailable (%s); used %s strategy", f.primary.Name(), reason, f.secondary.Name()))
	return result, nil
}
