package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// defaultBackoff is how long calls pause after the provider reports a rate limit.
const defaultBackoff = 30 * time.Second

// RateLimiter spaces provider calls with a token bucket and pauses all
// callers after the provider answers 429.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter allows requestsPerMinute calls per minute with a burst of
// up to a tenth of that. Returns nil when requestsPerMinute is not positive.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := max(1, requestsPerMinute/10)
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), burst),
		backoff: defaultBackoff,
	}
}

// Wait blocks until a call may proceed. A deadline hit while waiting is
// reported as domain.ErrTimeout.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return waitErr(ctx.Err())
		case <-timer.C:
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return waitErr(err)
	}
	return nil
}

// Observe starts a backoff period when err reports a provider rate limit.
func (r *RateLimiter) Observe(err error) {
	if !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	r.mu.Lock()
	r.retryAt = time.Now().Add(r.backoff)
	r.mu.Unlock()
}

func waitErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	// rate.Limiter reports a wait that would overrun the deadline before it happens.
	return fmt.Errorf("%w: waiting for provider rate limit: %w", domain.ErrTimeout, err)
}

// Ensure the wrappers implement the interfaces.
var (
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
)

// RateLimitedLLM throttles an LLMService.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

// NewRateLimitedLLM wraps svc; a nil limiter returns svc unchanged.
func NewRateLimitedLLM(svc driven.LLMService, limiter *RateLimiter) driven.LLMService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &RateLimitedLLM{LLMService: svc, limiter: limiter}
}

// Generate waits for the limiter, then delegates.
func (l *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := l.LLMService.Generate(ctx, prompt, opts)
	l.limiter.Observe(err)
	return out, err
}

// Chat waits for the limiter, then delegates.
func (l *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := l.LLMService.Chat(ctx, messages, opts)
	l.limiter.Observe(err)
	return out, err
}

// RateLimitedEmbedding throttles an EmbeddingService.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// NewRateLimitedEmbedding wraps svc; a nil limiter returns svc unchanged.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, limiter *RateLimiter) driven.EmbeddingService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &RateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter, then delegates.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := e.EmbeddingService.Embed(ctx, text)
	e.limiter.Observe(err)
	return out, err
}

// EmbedBatch waits for the limiter, then delegates. A batch counts as one call.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := e.EmbeddingService.EmbedBatch(ctx, texts)
	e.limiter.Observe(err)
	return out, err
}
