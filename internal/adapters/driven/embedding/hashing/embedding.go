// Package hashing provides a deterministic embedding service that needs no
// model weights. Text is tokenised into lowercase words, each word and its
// character trigrams are hashed into signed buckets, and the result is
// L2-normalised. Texts sharing vocabulary land close together, which is
// enough for offline use and tests; it is not a semantic model.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ModelName is reported for vectors produced by this package.
const ModelName = "hash-bow"

// trigramWeight scales sub-word features relative to whole words.
const trigramWeight = 0.5

// EmbeddingService embeds text by feature hashing.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder producing vectors of the given size.
func NewEmbeddingService(dimensions int) (*EmbeddingService, error) {
	if dimensions <= 0 {
		return nil, &domain.ConfigError{
			Field:  "embedding.dimensions",
			Reason: fmt.Sprintf("must be positive, got %d", dimensions),
		}
	}
	return &EmbeddingService{dimensions: dimensions}, nil
}

// Embed generates a vector embedding for the given text.
// Text without any letters or digits maps to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := make([]float64, s.dimensions)
	for _, tok := range tokenize(text) {
		s.addFeature(acc, "w:"+tok, 1)
		runes := []rune("^" + tok + "$")
		for i := 0; i+3 <= len(runes); i++ {
			s.addFeature(acc, "t:"+string(runes[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// addFeature adds weight to the bucket of feature, with a sign taken from
// an independent bit of the hash so collisions cancel out on average.
func (s *EmbeddingService) addFeature(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
