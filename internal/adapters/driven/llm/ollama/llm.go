// Package ollama provides an LLM service adapter using a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/providererr"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.1"
	DefaultLLMTimeout = 300 * time.Second

	provider = "ollama"
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.1).
	Model string

	// Timeout is the request timeout (default: 300s). Local models are slow.
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client *api.Client
	model  string
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("ollama: invalid base URL %q", cfg.BaseURL)
	}

	return &LLMService{
		client: api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request(opts.MaxTokens, opts.Temperature)
	req.Messages = []api.Message{{Role: driven.RoleUser, Content: prompt}}
	if len(opts.StopWords) > 0 {
		req.Options["stop"] = opts.StopWords
	}
	return s.send(ctx, req)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := s.request(opts.MaxTokens, opts.Temperature)
	req.Messages = make([]api.Message, len(messages))
	for i, msg := range messages {
		req.Messages[i] = api.Message{Role: msg.Role, Content: msg.Content}
	}
	if opts.JSONMode {
		req.Format = json.RawMessage(`"json"`)
	}
	return s.send(ctx, req)
}

func (s *LLMService) request(maxTokens int, temperature float64) *api.ChatRequest {
	stream := false
	options := map[string]any{}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}
	if temperature > 0 {
		options["temperature"] = temperature
	}
	return &api.ChatRequest{
		Model:   s.model,
		Stream:  &stream,
		Options: options,
	}
}

func (s *LLMService) send(ctx context.Context, req *api.ChatRequest) (string, error) {
	var content strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classify(err)
	}
	if strings.TrimSpace(content.String()) == "" {
		return "", providererr.Malformed(provider, "empty response from %s", s.model)
	}
	return content.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the server answers and the model has been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	list, err := s.client.List(ctx)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", classify(err))
	}
	for _, m := range list.Models {
		if m.Name == s.model || m.Model == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return nil
		}
	}
	return providererr.Status(provider, http.StatusNotFound, fmt.Errorf("model %s is not pulled", s.model))
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func classify(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return providererr.Status(provider, statusErr.StatusCode, err)
	}
	return providererr.Classify(provider, err)
}
