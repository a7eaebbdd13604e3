package domain

import "fmt"

const unknownDescription = "Unknown"

// Chunking defaults match the all-MiniLM-L6-v2 context window.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTopK         = 3
	DefaultDimensions   = 384
)

// GeminiOpenAIBaseURL is Google's OpenAI-compatible endpoint for Gemini models.
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHash is the built-in deterministic hashing embedder. It needs no model.
	AIProviderHash AIProvider = "hash"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is Google Gemini through its OpenAI-compatible endpoint.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHash, AIProviderOllama, AIProviderOpenAI, AIProviderGemini, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs without a network service.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHash:
		return "Hash (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkSettings controls how document text is split before embedding.
type ChunkSettings struct {
	// Size is the window width in characters.
	Size int

	// Overlap is how many characters consecutive windows share.
	Overlap int
}

// Validate checks Size > Overlap >= 0 and Size > 0.
func (c ChunkSettings) Validate() error {
	if c.Size <= 0 {
		return &ConfigError{Field: "chunk.size", Reason: fmt.Sprintf("must be positive, got %d", c.Size)}
	}
	if c.Overlap < 0 {
		return &ConfigError{Field: "chunk.overlap", Reason: fmt.Sprintf("must not be negative, got %d", c.Overlap)}
	}
	if c.Overlap >= c.Size {
		return &ConfigError{
			Field:  "chunk.overlap",
			Reason: fmt.Sprintf("must be smaller than chunk.size (%d), got %d", c.Size, c.Overlap),
		}
	}
	return nil
}

// RetrievalSettings holds query-time options.
type RetrievalSettings struct {
	// TopK is the default number of chunks retrieved per query.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size. The index is built with this dimension.
	Dimensions int

	// RequestsPerSecond throttles remote providers. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return e.Dimensions > 0
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini/Anthropic).
	APIKey string

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// RequestsPerSecond throttles generation calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHash {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Settings holds all application settings.
type Settings struct {
	Chunk     ChunkSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings

	// Verbose enables debug logging.
	Verbose bool
}

// Validate checks the settings that would break ingestion or retrieval.
func (s Settings) Validate() error {
	if err := s.Chunk.Validate(); err != nil {
		return err
	}
	if s.Retrieval.TopK < 1 {
		return &ConfigError{Field: "retrieval.top_k", Reason: fmt.Sprintf("must be at least 1, got %d", s.Retrieval.TopK)}
	}
	if s.Embedding.Dimensions < 1 {
		return &ConfigError{
			Field:  "embedding.dimensions",
			Reason: fmt.Sprintf("must be at least 1, got %d", s.Embedding.Dimensions),
		}
	}
	switch s.Embedding.Provider {
	case AIProviderHash, AIProviderOllama, AIProviderOpenAI:
	default:
		return &ConfigError{Field: "embedding.provider", Reason: fmt.Sprintf("unsupported provider %q", s.Embedding.Provider)}
	}
	if s.LLM.Provider != "" && (!s.LLM.Provider.IsValid() || s.LLM.Provider == AIProviderHash) {
		return &ConfigError{Field: "llm.provider", Reason: fmt.Sprintf("unsupported provider %q", s.LLM.Provider)}
	}
	if s.LLM.MaxTokens < 0 {
		return &ConfigError{Field: "llm.max_tokens", Reason: fmt.Sprintf("must not be negative, got %d", s.LLM.MaxTokens)}
	}
	if s.Embedding.RequestsPerSecond < 0 || s.LLM.RequestsPerSecond < 0 {
		return &ConfigError{Field: "requests_per_second", Reason: "must not be negative"}
	}
	return nil
}

// DefaultSettings returns settings that work offline out of the box.
// The LLM is left unconfigured, so questions return retrieved context only.
func DefaultSettings() Settings {
	return Settings{
		Chunk: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHash,
			Dimensions: DefaultDimensions,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHash,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support answer generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHash:   "hash-bow",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the native vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
