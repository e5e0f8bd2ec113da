package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/memory"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// mockAIValidator records what it was asked to validate.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.embedding = config
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.llm = config
	return m.llmErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":          "openai",
		"embedding.model":             "text-embedding-3-large",
		"embedding.api_key":           "sk-embed",
		"llm.provider":                "anthropic",
		"llm.model":                   "claude-haiku-4-5",
		"llm.requests_per_minute":     int64(30),
		"chunking.target_tokens":      "120",
		"chunking.overlap":            0.25,
		"retrieval.top_k":             float64(4),
		"retrieval.max_context_chars": 5000,
		"limits.fetch_timeout":        "5s",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-embed", settings.Embedding.APIKey)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-haiku-4-5", settings.LLM.Model)
	assert.Equal(t, 30, settings.LLM.RequestsPerMinute)
	assert.Equal(t, 120, settings.Chunking.TargetTokens)
	assert.InDelta(t, 0.25, settings.Chunking.OverlapFraction, 1e-9)
	assert.Equal(t, 4, settings.Retrieval.TopK)
	assert.Equal(t, 5000, settings.Retrieval.MaxContextChars)
	assert.Equal(t, 5*time.Second, settings.Limits.FetchTimeout)
	assert.Equal(t, domain.DefaultGenerationTimeout, settings.Limits.GenerationTimeout)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":     "invalid_provider",
		"chunking.target_tokens": "lots",
		"chunking.overlap":       "half",
		"limits.fetch_timeout":   "-3s",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.Limits.FetchTimeout, settings.Limits.FetchTimeout)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	want := domain.DefaultAppSettings()
	want.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "mxbai-embed-large",
		BaseURL:  "http://gpu-box:11434",
	}
	want.LLM = domain.LLMSettings{
		Provider:          domain.AIProviderOpenAI,
		Model:             "gpt-4o",
		FallbackModel:     "gpt-4o-mini",
		APIKey:            "sk-llm",
		RequestsPerMinute: 60,
	}
	want.Chunking.TargetTokens = 300
	want.Retrieval.TopK = 7
	want.Limits.GenerationTimeout = 90 * time.Second

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_SaveKeepsExistingAPIKeys(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.api_key": "sk-existing"})
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOpenAI
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "sk-existing", store.GetString("llm.api_key"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		apiKey    string
		wantErr   bool
		wantModel string
		wantURL   string
	}{
		{"ollama default model", domain.AIProviderOllama, "", "", false, "nomic-embed-text", "http://localhost:11434"},
		{"openai with key", domain.AIProviderOpenAI, "text-embedding-3-large", "sk-test", false, "text-embedding-3-large", ""},
		{"openai without key", domain.AIProviderOpenAI, "", "", true, "", ""},
		{"anthropic has no embeddings", domain.AIProviderAnthropic, "", "sk-ant", true, "", ""},
		{"invalid provider", domain.AIProvider("cohere"), "", "", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			err := service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantModel, settings.Embedding.Model)
			assert.Equal(t, tt.wantURL, settings.Embedding.BaseURL)
			assert.True(t, settings.Embedding.IsConfigured())
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", "sk-test"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "gpt-4o-mini", settings.LLM.FallbackModel)
	assert.Empty(t, settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "qwen2.5-coder", ""))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "qwen2.5-coder", settings.LLM.Model)
	assert.Empty(t, settings.LLM.FallbackModel)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)

	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderGoogle, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLLMProvider("", "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		seed    map[string]any
		wantErr string
	}{
		{"defaults", nil, ""},
		{"openai embedding without key", map[string]any{"embedding.provider": "openai"}, "embedding provider"},
		{"anthropic llm without key", map[string]any{"llm.provider": "anthropic"}, "LLM provider"},
		{"overlap out of range", map[string]any{"chunking.overlap": 1.5}, "chunking.overlap"},
		{"configured ollama", map[string]any{"embedding.provider": "ollama", "llm.provider": "ollama"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(tt.seed), nil)
			err := service.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider": "ollama",
		"llm.provider":       "openai",
		"llm.api_key":        "sk-test",
	})
	validator := &mockAIValidator{llmErr: errors.New("401 unauthorized")}
	service := NewSettingsService(store, validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderOllama, validator.embedding.Provider)

	err := service.ValidateLLMConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, "sk-test", validator.llm.APIKey)
}

func TestSettingsService_ValidateWithoutValidator(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
