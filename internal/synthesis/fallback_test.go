package synthesis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/technology"
)

type recordingMetrics struct {
	driven.NopMetrics
	mu        sync.Mutex
	fallbacks []string
}

func (r *recordingMetrics) SynthesisFallback(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, reason)
}

func failingLLM() *MockLLMService {
	llm := new(MockLLMService)
	llm.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("", domain.ErrProviderUnavailable)
	return llm
}

func TestFallback_GuaranteeForEveryProfile(t *testing.T) {
	registry := technology.Default()
	metrics := &recordingMetrics{}
	synth := NewFallback(NewAI(failingLLM()), NewTemplate(registry.Unknown()), metrics)

	profiles := append(registry.Profiles(), registry.Unknown())
	for _, profile := range profiles {
		t.Run(string(profile.ID), func(t *testing.T) {
			result, err := synth.Synthesize(context.Background(), driven.SynthesisRequest{
				Prompt:  "an api with CRUD for invoices",
				Context: "docs",
				Profile: profile,
			})
			require.NoError(t, err)

			assert.Equal(t, domain.StrategyTemplate, result.Strategy)
			assertValidFiles(t, result.Files)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], "ai generation unavailable")
		})
	}
	assert.Len(t, metrics.fallbacks, len(profiles))
	assert.Equal(t, domain.CodeGenerationUnavailable, metrics.fallbacks[0])
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	llm := new(MockLLMService)
	llm.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"files": [{"path": "main.py", "content": "print(1)"}]}`, nil)
	metrics := &recordingMetrics{}

	result, err := NewFallback(NewAI(llm), NewTemplate(nil), metrics).
		Synthesize(context.Background(), driven.SynthesisRequest{Prompt: "x"})
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyAI, result.Strategy)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, metrics.fallbacks)
}

func TestFallback_TimeoutWithinRequestBudget(t *testing.T) {
	llm := new(MockLLMService)
	llm.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)
	metrics := &recordingMetrics{}
	synth := NewFallback(NewAI(llm, WithTimeout(time.Hour)), NewTemplate(nil), metrics)

	// The request deadline is shorter than the AI timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := synth.Synthesize(ctx, driven.SynthesisRequest{
		Prompt:  "Create a Spring Boot REST API with CRUD for User",
		Profile: springProfile(t),
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.StrategyTemplate, result.Strategy)
	assert.NotEmpty(t, result.Files)
	assert.Equal(t, []string{domain.CodeTimeout}, metrics.fallbacks)
}

func TestFallback_NoPrimary(t *testing.T) {
	synth := NewFallback(nil, NewTemplate(nil), nil)
	assert.Equal(t, "template", synth.Name())

	result, err := synth.Synthesize(context.Background(), driven.SynthesisRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyTemplate, result.Strategy)
	assert.Empty(t, result.Warnings)
}

func TestFallback_Name(t *testing.T) {
	assert.Equal(t, "ai+template", NewFallback(NewAI(nil), NewTemplate(nil), nil).Name())
}
