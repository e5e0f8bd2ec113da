// Package openai provides an LLM service adapter using the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/providererr"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultLLMModel   = "gpt-4o"
	DefaultLLMTimeout = 120 * time.Second

	provider = "openai"
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API endpoint for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o).
	Model string

	// FallbackModel is tried once when Model is unavailable. Empty disables it.
	FallbackModel string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using OpenAI.
type LLMService struct {
	client        openai.Client
	model         string
	fallbackModel string
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.FallbackModel == cfg.Model {
		cfg.FallbackModel = ""
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMService{
		client:        openai.NewClient(opts...),
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opts.StopWords}
	}
	return s.complete(ctx, params)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case driven.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return s.complete(ctx, params)
}

// complete sends the request with the primary model and, when the provider
// reports the model unavailable, once more with the fallback model.
func (s *LLMService) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	params.Model = openai.ChatModel(s.model)
	text, err := s.send(ctx, params)
	if err == nil || s.fallbackModel == "" || ctx.Err() != nil || !errors.Is(err, domain.ErrProviderUnavailable) {
		return text, err
	}

	logger.Warn("openai: model %s failed (%v), retrying with %s", s.model, err, s.fallbackModel)
	params.Model = openai.ChatModel(s.fallbackModel)
	text, fbErr := s.send(ctx, params)
	if fbErr != nil {
		return "", fmt.Errorf("fallback model %s: %w", s.fallbackModel, fbErr)
	}
	return text, nil
}

func (s *LLMService) send(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", providererr.Malformed(provider, "response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", classify(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return providererr.Status(provider, apiErr.StatusCode, err)
	}
	return providererr.Classify(provider, err)
}
