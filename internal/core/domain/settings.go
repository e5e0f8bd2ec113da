package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGoogle is the Gemini API.
	AIProviderGoogle AIProvider = "google"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGoogle:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGoogle
}

// SupportsEmbeddings returns true if DocuGen has an embedding adapter for the provider.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGoogle:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// FallbackModel is tried once when the primary model fails (OpenAI only).
	FallbackModel string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic/Google).
	APIKey string

	// RequestsPerMinute throttles calls to the provider. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls how extracted text is split.
type ChunkingSettings struct {
	// TargetTokens is the chunk size budget in tokens.
	TargetTokens int

	// OverlapFraction is the share of the budget repeated between neighbours.
	OverlapFraction float64
}

// RetrievalSettings controls how context is selected for generation.
type RetrievalSettings struct {
	// TopK is the maximum number of chunks retrieved.
	TopK int

	// MaxContextChars caps the concatenated context length.
	MaxContextChars int
}

// LimitSettings holds size caps and time bounds for external work.
type LimitSettings struct {
	// MaxSourceBytes caps the size of an ingested source.
	MaxSourceBytes int64

	// FetchTimeout bounds URL retrieval.
	FetchTimeout time.Duration

	// EmbeddingTimeout bounds a single embedding call.
	EmbeddingTimeout time.Duration

	// GenerationTimeout bounds a single AI synthesis call.
	GenerationTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Retrieval holds retriever settings.
	Retrieval RetrievalSettings

	// Limits holds size caps and timeouts.
	Limits LimitSettings
}

// Defaults.
const (
	DefaultChunkTokens       = 200
	DefaultChunkOverlap      = 0.2
	DefaultTopK              = 10
	DefaultMaxContextChars   = 12000
	DefaultMaxSourceBytes    = 10 << 20
	DefaultFetchTimeout      = 30 * time.Second
	DefaultEmbeddingTimeout  = 20 * time.Second
	DefaultGenerationTimeout = 60 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default.
// Users must explicitly configure them via `docugen config set`.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		// Embedding is left unconfigured - retrieval falls back to lexical scoring
		Embedding: EmbeddingSettings{},
		// LLM is left unconfigured - generation uses templates only
		LLM: LLMSettings{},
		Chunking: ChunkingSettings{
			TargetTokens:    DefaultChunkTokens,
			OverlapFraction: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:            DefaultTopK,
			MaxContextChars: DefaultMaxContextChars,
		},
		Limits: LimitSettings{
			MaxSourceBytes:    DefaultMaxSourceBytes,
			FetchTimeout:      DefaultFetchTimeout,
			EmbeddingTimeout:  DefaultEmbeddingTimeout,
			GenerationTimeout: DefaultGenerationTimeout,
		},
	}
}

// AllAIProviders returns all available AI providers.
func AllAIProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGoogle,
	}
}

// DefaultEmbeddingModels returns the model used when none is given.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns the model used when none is given.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.1",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-sonnet-4-5",
		AIProviderGoogle:    "gemini-2.5-flash",
	}
}

// DefaultFallbackModels returns the secondary model tried after a primary failure.
func DefaultFallbackModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "gpt-4o-mini",
	}
}
