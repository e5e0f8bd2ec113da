// Package google provides an LLM service adapter using the Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/providererr"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultLLMModel   = "gemini-2.5-flash"
	DefaultLLMTimeout = 120 * time.Second

	provider = "google"
)

// LLMConfig holds configuration for the Gemini LLM service.
type LLMConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the model to use (default: gemini-2.5-flash).
	Model string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Google Gemini.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	return &LLMService{client: client, model: cfg.Model}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	config := s.config(opts.MaxTokens, opts.Temperature)
	config.StopSequences = opts.StopWords
	return s.send(ctx, []*genai.Content{text(genai.RoleUser, prompt)}, config)
}

// Chat conducts a multi-turn conversation. System messages become the
// system instruction; assistant turns use the "model" role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	config := s.config(opts.MaxTokens, opts.Temperature)
	if opts.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			system = append(system, msg.Content)
		case driven.RoleAssistant:
			contents = append(contents, text(genai.RoleModel, msg.Content))
		default:
			contents = append(contents, text(genai.RoleUser, msg.Content))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("google: chat needs at least one user message")
	}
	return s.send(ctx, contents, config)
}

func (s *LLMService) config(maxTokens int, temperature float64) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens) //nolint:gosec // bounded by callers
	}
	if temperature > 0 {
		t := float32(temperature)
		config.Temperature = &t
	}
	return config
}

func (s *LLMService) send(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", classify(err)
	}
	out := result.Text()
	if strings.TrimSpace(out) == "" {
		return "", providererr.Malformed(provider, "response has no text content")
	}
	return out, nil
}

func text(role, content string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: content}}}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the key by fetching the configured model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("google: ping failed: %w", classify(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providererr.Status(provider, apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return providererr.Status(provider, apiErrPtr.Code, err)
	}
	return providererr.Classify(provider, err)
}
