package ai

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// Ensure wrappers implement the interfaces.
var (
	_ driven.EmbeddingService = (*RateLimitedEmbedder)(nil)
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
)

func newLimiter(perSecond float64) *rate.Limiter {
	burst := int(math.Ceil(perSecond))
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// RateLimitedEmbedder throttles calls to a remote embedding provider.
// A batch counts as one request.
type RateLimitedEmbedder struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder wraps svc with a limiter allowing perSecond requests.
func NewRateLimitedEmbedder(svc driven.EmbeddingService, perSecond float64) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{EmbeddingService: svc, limiter: newLimiter(perSecond)}
}

// Embed waits for a token, then embeds.
func (r *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds the batch.
func (r *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.EmbeddingService.EmbedBatch(ctx, texts)
}

// RateLimitedLLM throttles generation calls.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps svc with a limiter allowing perSecond requests.
func NewRateLimitedLLM(svc driven.LLMService, perSecond float64) *RateLimitedLLM {
	return &RateLimitedLLM{LLMService: svc, limiter: newLimiter(perSecond)}
}

// Generate waits for a token, then generates.
func (r *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.LLMService.Generate(ctx, prompt, opts)
}
