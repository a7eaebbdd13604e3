package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize     = "chunk.size"
	keyChunkOverlap  = "chunk.overlap"
	keyRetrievalTopK = "retrieval.top_k"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMMaxTokens  = "llm.max_tokens"
	keyLLMRPS        = "llm.requests_per_second"
	keyLogVerbose    = "log.verbose"
)

// llmProviderDisabled turns answer generation off.
const llmProviderDisabled = "none"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindEmbedProvider
	kindLLMProvider
)

var settingKinds = map[string]valueKind{
	keyChunkSize:     kindInt,
	keyChunkOverlap:  kindInt,
	keyRetrievalTopK: kindInt,
	keyEmbedProvider: kindEmbedProvider,
	keyEmbedModel:    kindString,
	keyEmbedBaseURL:  kindString,
	keyEmbedAPIKey:   kindString,
	keyEmbedDims:     kindInt,
	keyEmbedRPS:      kindFloat,
	keyLLMProvider:   kindLLMProvider,
	keyLLMModel:      kindString,
	keyLLMBaseURL:    kindString,
	keyLLMAPIKey:     kindString,
	keyLLMMaxTokens:  kindInt,
	keyLLMRPS:        kindFloat,
	keyLogVerbose:    kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	overrides   func(*domain.Settings)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// SetOverrides registers a hook applied after the config file is read,
// typically to fill API keys from the environment. Overrides are never saved.
func (s *SettingsService) SetOverrides(fn func(*domain.Settings)) {
	s.overrides = fn
}

// Get retrieves current application settings.
// Returns a domain.ConfigError when the stored values are inconsistent.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.read()
	if s.overrides != nil {
		s.overrides(settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) read() *domain.Settings {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Chunk: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunk.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunk.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:         s.getInt(keyLLMMaxTokens, DefaultAnswerMaxTokens),
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRPS),
		},
		Verbose: s.configStore.GetBool(keyLogVerbose),
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	settings.Embedding.Dimensions = s.getInt(keyEmbedDims, defaultDimensions(settings.Embedding))

	if settings.LLM.Model == "" && settings.LLM.Provider != "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings
}

// defaultDimensions uses the native size of local models. Hosted OpenAI
// models can shorten their vectors, so they stay at the default.
func defaultDimensions(e domain.EmbeddingSettings) int {
	if e.Provider == domain.AIProviderOllama {
		if d, ok := domain.EmbeddingDimensions()[e.Model]; ok {
			return d
		}
	}
	return domain.DefaultDimensions
}

// Set parses value for key, checks the resulting settings and persists it.
// An empty value clears the key back to its default.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}
	value = strings.TrimSpace(value)

	parsed, err := parseSetting(key, kind, value)
	if err != nil {
		return err
	}

	// Validate against the stored values before writing anything.
	candidate := s.read()
	applySetting(candidate, key, parsed)
	if err := candidate.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the settings keys that Set accepts, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseSetting(key string, kind valueKind, value string) (any, error) {
	if value == "" {
		return "", nil
	}

	invalid := func(reason string) error {
		return &domain.ConfigError{Field: key, Reason: reason}
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, invalid(fmt.Sprintf("%q is not an integer", value))
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, invalid(fmt.Sprintf("%q is not a non-negative number", value))
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, invalid(fmt.Sprintf("%q is not true or false", value))
		}
		return b, nil
	case kindEmbedProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !containsProvider(domain.AllEmbeddingProviders(), p) {
			return nil, invalid(fmt.Sprintf("%q does not provide embeddings", value))
		}
		return p.String(), nil
	case kindLLMProvider:
		if strings.EqualFold(value, llmProviderDisabled) {
			return "", nil
		}
		p := domain.AIProvider(strings.ToLower(value))
		if !containsProvider(domain.AllLLMProviders(), p) {
			return nil, invalid(fmt.Sprintf("%q does not generate answers", value))
		}
		return p.String(), nil
	default:
		return value, nil
	}
}

// applySetting mirrors read for a single key so Set can validate the
// combined result.
func applySetting(s *domain.Settings, key string, v any) {
	str, _ := v.(string)
	f, _ := v.(float64)
	b, _ := v.(bool)

	switch key {
	case keyChunkSize:
		s.Chunk.Size = intOr(v, domain.DefaultChunkSize)
	case keyChunkOverlap:
		s.Chunk.Overlap = intOr(v, domain.DefaultChunkOverlap)
	case keyRetrievalTopK:
		s.Retrieval.TopK = intOr(v, domain.DefaultTopK)
	case keyEmbedProvider:
		s.Embedding.Provider = domain.AIProvider(str)
		if str == "" {
			s.Embedding.Provider = domain.AIProviderHash
		}
	case keyEmbedModel:
		s.Embedding.Model = str
	case keyEmbedBaseURL:
		s.Embedding.BaseURL = str
	case keyEmbedAPIKey:
		s.Embedding.APIKey = str
	case keyEmbedDims:
		s.Embedding.Dimensions = intOr(v, defaultDimensions(s.Embedding))
	case keyEmbedRPS:
		s.Embedding.RequestsPerSecond = f
	case keyLLMProvider:
		s.LLM.Provider = domain.AIProvider(str)
	case keyLLMModel:
		s.LLM.Model = str
	case keyLLMBaseURL:
		s.LLM.BaseURL = str
	case keyLLMAPIKey:
		s.LLM.APIKey = str
	case keyLLMMaxTokens:
		s.LLM.MaxTokens = intOr(v, DefaultAnswerMaxTokens)
	case keyLLMRPS:
		s.LLM.RequestsPerSecond = f
	case keyLogVerbose:
		s.Verbose = b
	}
}

// Helper methods for reading config with defaults.

// getInt treats a missing key as unset, so an explicit zero is kept and
// left to validation.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, exists := s.configStore.Get(key); !exists || v == "" {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}

func containsProvider(list []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

// intOr returns v when it holds a parsed integer and defaultVal when the
// key is being cleared.
func intOr(v any, defaultVal int) int {
	if n, ok := v.(int); ok {
		return n
	}
	return defaultVal
}
