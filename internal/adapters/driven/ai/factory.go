// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/llm/anthropic"
	googlellm "github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/llm/google"
	ollamallm "github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/llm/ollama"
	openaillm "github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/llm/openai"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the AI adapters a process runs with. Either may be nil:
// retrieval then scores lexically and synthesis uses templates only.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Warnings  []string // Non-fatal issues that caused fallback.
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// CreateServices builds and pings the configured providers. A provider that
// cannot be created or reached is left nil and reported in Warnings.
// When both roles use the same provider they share one rate limiter.
func CreateServices(settings domain.AppSettings) *Services {
	result := &Services{}

	limiter := NewRateLimiter(settings.LLM.RequestsPerMinute)

	if svc, err := CreateAndValidateEmbeddingService(&settings.Embedding); err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else if svc != nil {
		if settings.Embedding.Provider == settings.LLM.Provider {
			svc = NewRateLimitedEmbedding(svc, limiter)
		}
		result.Embedding = svc
	}

	if svc, err := CreateAndValidateLLMService(&settings.LLM); err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else if svc != nil {
		result.LLM = NewRateLimitedLLM(svc, limiter)
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docugen config set embedding.provider' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docugen config set llm.provider' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.Provider.IsValid() {
		return nil, nil
	}
	if !settings.Provider.SupportsEmbeddings() {
		return nil, fmt.Errorf("%s does not support embeddings, use ollama or openai", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return embeddingOrNil(ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	case domain.AIProviderOpenAI:
		return embeddingOrNil(openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return llmOrNil(ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	case domain.AIProviderOpenAI:
		return llmOrNil(openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:        settings.APIKey,
			BaseURL:       settings.BaseURL,
			Model:         settings.Model,
			FallbackModel: settings.FallbackModel,
		}))

	case domain.AIProviderAnthropic:
		return llmOrNil(anthropicllm.NewLLMService(anthropicllm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	case domain.AIProviderGoogle:
		return llmOrNil(googlellm.NewLLMService(googlellm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// embeddingOrNil keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func embeddingOrNil[T driven.EmbeddingService](svc T, err error) (driven.EmbeddingService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func llmOrNil[T driven.LLMService](svc T, err error) (driven.LLMService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}
