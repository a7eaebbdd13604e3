package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/logger"
)

// Ensure LazyEmbedder implements the interface.
var _ driven.EmbeddingService = (*LazyEmbedder)(nil)

// Loader builds an embedding service. It runs at most once per LazyEmbedder.
type Loader func(ctx context.Context) (driven.EmbeddingService, error)

// LazyEmbedder defers building the embedding service until the first call
// that needs the model. A load failure is kept and returned by every later
// call for the life of the process; it is never retried.
type LazyEmbedder struct {
	load       Loader
	dimensions int
	model      string

	once sync.Once
	err  error

	// mu guards svc for Close, which must not wait on or trigger a load.
	mu  sync.Mutex
	svc driven.EmbeddingService
}

// NewLazyEmbedder creates a lazy embedder. Dimensions and model name are
// known from configuration, so they are answered without loading.
func NewLazyEmbedder(dimensions int, model string, load Loader) *LazyEmbedder {
	return &LazyEmbedder{
		load:       load,
		dimensions: dimensions,
		model:      model,
	}
}

// NewLazyEmbedderFromSettings creates a lazy embedder that validates the
// configured provider on first use.
func NewLazyEmbedderFromSettings(settings domain.EmbeddingSettings) *LazyEmbedder {
	model := settings.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[settings.Provider]
	}
	return NewLazyEmbedder(settings.Dimensions, model, func(ctx context.Context) (driven.EmbeddingService, error) {
		return CreateAndValidateEmbeddingService(ctx, &settings)
	})
}

func (l *LazyEmbedder) get(ctx context.Context) (driven.EmbeddingService, error) {
	l.once.Do(func() {
		done := logger.Timed("load embedding model " + l.model)
		defer done()

		svc, err := l.load(ctx)
		switch {
		case err != nil:
			l.err = fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		case svc.Dimensions() != l.dimensions:
			svc.Close()
			l.err = fmt.Errorf("%w: %w", domain.ErrModelUnavailable,
				&domain.DimensionError{Position: -1, Want: l.dimensions, Got: svc.Dimensions()})
		default:
			l.mu.Lock()
			l.svc = svc
			l.mu.Unlock()
		}
	})
	return l.svc, l.err
}

// Load forces the model to load and reports the sticky result.
func (l *LazyEmbedder) Load(ctx context.Context) error {
	_, err := l.get(ctx)
	return err
}

// Embed generates a vector embedding for the given text.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (l *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

// Dimensions returns the configured vector size.
func (l *LazyEmbedder) Dimensions() int {
	return l.dimensions
}

// ModelName returns the configured model name.
func (l *LazyEmbedder) ModelName() string {
	return l.model
}

// Ping loads the model if needed and pings it.
func (l *LazyEmbedder) Ping(ctx context.Context) error {
	svc, err := l.get(ctx)
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close releases the loaded service, if any.
func (l *LazyEmbedder) Close() error {
	l.mu.Lock()
	svc := l.svc
	l.mu.Unlock()
	if svc != nil {
		return svc.Close()
	}
	return nil
}
