// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/newsrag/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/newsrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/newsrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/newsrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/newsrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/newsrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// A configured rate limit wraps the service in a RateLimitedEmbedder.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'newsrag settings show' to check the configuration",
			domain.ErrEmbeddingUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	if settings.RequestsPerSecond > 0 {
		return NewRateLimitedEmbedder(svc, settings.RequestsPerSecond), nil
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no LLM is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}

	if settings.RequestsPerSecond > 0 {
		return NewRateLimitedLLM(svc, settings.RequestsPerSecond), nil
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for the configured provider.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrInvalidConfig)
	}
	if settings.Dimensions < 1 {
		return nil, &domain.ConfigError{
			Field:  "embedding.dimensions",
			Reason: fmt.Sprintf("must be at least 1, got %d", settings.Dimensions),
		}
	}

	switch settings.Provider {
	case domain.AIProviderHash:
		return hashing.NewEmbeddingService(settings.Dimensions)

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini, domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: %s does not provide embeddings, use hash, ollama or openai",
			domain.ErrUnsupportedType, settings.Provider)

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the LLM service for the configured provider.
// Returns nil if no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = domain.GeminiOpenAIBaseURL
		}
		model := settings.Model
		if model == "" {
			model = domain.DefaultLLMModels()[domain.AIProviderGemini]
		}
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}
