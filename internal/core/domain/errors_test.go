package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidConfig", ErrInvalidConfig},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrModelUnavailable", ErrModelUnavailable},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrConnectorClosed", ErrConnectorClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "chunk.size", Reason: "must be positive, got 0"}

	assert.Equal(t, "invalid configuration: chunk.size: must be positive, got 0", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.False(t, errors.Is(err, ErrDimensionMismatch))

	wrapped := fmt.Errorf("ingest failed: %w", err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(wrapped, &cfgErr))
	assert.Equal(t, "chunk.size", cfgErr.Field)
}

func TestDimensionError(t *testing.T) {
	t.Run("batch vector", func(t *testing.T) {
		err := &DimensionError{Position: 2, Want: 384, Got: 768}
		assert.Equal(t, "dimension mismatch: vector 2 has 768, index expects 384", err.Error())
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
	})

	t.Run("query vector", func(t *testing.T) {
		err := &DimensionError{Position: -1, Want: 384, Got: 3}
		assert.Equal(t, "dimension mismatch: query has 3, index expects 384", err.Error())
	})
}
