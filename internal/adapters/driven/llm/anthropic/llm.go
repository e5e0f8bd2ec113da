// Package anthropic provides an LLM service adapter using the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/providererr"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultLLMModel   = "claude-sonnet-4-5"
	DefaultLLMTimeout = 120 * time.Second
	DefaultMaxTokens  = 4096

	provider = "anthropic"
)

// jsonInstruction is appended to the system prompt in JSON mode; the
// Messages API has no response format switch.
const jsonInstruction = "Respond with a single JSON object and nothing else."

// LLMConfig holds configuration for the Anthropic LLM service.
type LLMConfig struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the model to use (default: claude-sonnet-4-5).
	Model string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Anthropic Claude.
type LLMService struct {
	client anthropic.Client
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
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
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	params := s.params(opts.MaxTokens, opts.Temperature)
	params.Messages = []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))}
	params.StopSequences = opts.StopWords
	return s.send(ctx, params)
}

// Chat conducts a multi-turn conversation. System messages are lifted into
// the request's system prompt.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	params := s.params(opts.MaxTokens, opts.Temperature)

	var system []string
	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			system = append(system, msg.Content)
		case driven.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if opts.JSONMode {
		system = append(system, jsonInstruction)
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}
	if len(params.Messages) == 0 {
		return "", fmt.Errorf("anthropic: chat needs at least one user message")
	}
	return s.send(ctx, params)
}

func (s *LLMService) params(maxTokens int, temperature float64) anthropic.MessageNewParams {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(maxTokens),
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}
	return params
}

func (s *LLMService) send(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	var out strings.Builder
	for i := range resp.Content {
		if block := &resp.Content[i]; block.Type == "text" {
			out.WriteString(block.AsText().Text)
		}
	}
	if out.Len() == 0 {
		return "", providererr.Malformed(provider, "response has no text content")
	}
	return out.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", classify(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return providererr.Status(provider, apiErr.StatusCode, err)
	}
	return providererr.Classify(provider, err)
}
