// Package chunker splits document text into fixed-size, overlapping windows.
package chunker

import (
	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits text into windows of Size characters where consecutive
// windows share Overlap characters. Sizes count runes, not bytes.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options.
// Defaults are 500 characters with 50 overlap. Invalid values are rejected
// with a *domain.ConfigError rather than adjusted.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    domain.DefaultChunkSize,
		overlap: domain.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := (domain.ChunkSettings{Size: c.size, Overlap: c.overlap}).Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromSettings creates a chunker from chunk settings.
func FromSettings(s domain.ChunkSettings) (*Chunker, error) {
	return New(WithChunkSize(s.Size), WithOverlap(s.Overlap))
}

// Size returns the configured window width.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text. It never fails once the chunker is constructed.
func (c *Chunker) Chunk(text string) ([]string, error) {
	return split([]rune(text), c.size, c.overlap), nil
}

// Split chunks text with the given parameters, validating them first.
func Split(text string, size, overlap int) ([]string, error) {
	if err := (domain.ChunkSettings{Size: size, Overlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	return split([]rune(text), size, overlap), nil
}

// split walks a window of size runes across text. Each window after the first
// starts overlap runes before the previous one ended, and the walk stops as
// soon as a window reaches the end of the text.
func split(text []rune, size, overlap int) []string {
	n := len(text)
	if n == 0 {
		return nil
	}

	chunks := make([]string, 0, n/(size-overlap)+1)
	for start := 0; ; {
		end := min(start+size, n)
		chunks = append(chunks, string(text[start:end]))
		if end == n {
			break
		}
		start = end - overlap
	}
	return chunks
}
