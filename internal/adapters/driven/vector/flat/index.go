package flat

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a brute-force L2 index. It is safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	dim   int
	data  []float32
	keys  []string
	texts []string
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, &domain.ConfigError{Field: "embedding.dimensions", Reason: fmt.Sprintf("must be positive, got %d", dim)}
	}
	return &Index{dim: dim}, nil
}

// Dimensions returns the configured vector size.
func (ix *Index) Dimensions() int {
	return ix.dim
}

// Len returns the number of stored entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.keys)
}

// Add appends entries at the next offsets. The batch is validated in full
// before the lock is taken, so a rejected batch leaves the index untouched.
func (ix *Index) Add(vectors [][]float32, keys []string, texts []string) error {
	if len(vectors) != len(keys) || len(keys) != len(texts) {
		return fmt.Errorf("%w: add got %d vectors, %d keys and %d texts",
			domain.ErrInvalidInput, len(vectors), len(keys), len(texts))
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return &domain.DimensionError{Position: i, Want: ix.dim, Got: len(v)}
		}
	}
	if len(vectors) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.data = growFloats(ix.data, len(vectors)*ix.dim)
	for _, v := range vectors {
		ix.data = append(ix.data, v...)
	}
	ix.keys = append(ix.keys, keys...)
	ix.texts = append(ix.texts, texts...)
	return nil
}

// Search returns the k entries nearest to query by Euclidean distance.
// Ties are ordered by insertion offset.
func (ix *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != ix.dim {
		return nil, &domain.DimensionError{Position: -1, Want: ix.dim, Got: len(query)}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	n := len(ix.keys)
	if n == 0 {
		return []driven.VectorHit{}, nil
	}
	k = min(k, n)

	best := make(candidates, 0, k)
	for off := 0; off < n; off++ {
		d := squaredL2(query, ix.data[off*ix.dim:(off+1)*ix.dim])
		c := candidate{offset: off, dist: d}
		if len(best) < k {
			heap.Push(&best, c)
			continue
		}
		if c.less(best[0]) {
			best[0] = c
			heap.Fix(&best, 0)
		}
	}

	sort.Slice(best, func(i, j int) bool { return best[i].less(best[j]) })

	hits := make([]driven.VectorHit, len(best))
	for i, c := range best {
		hits[i] = driven.VectorHit{
			Key:      ix.keys[c.offset],
			Text:     ix.texts[c.offset],
			Distance: math.Sqrt(c.dist),
			Offset:   c.offset,
		}
	}
	return hits, nil
}

// squaredL2 accumulates in float64 so rankings do not depend on summation order.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func growFloats(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	grown := make([]float32, len(s), 2*cap(s)+n)
	copy(grown, s)
	return grown
}

type candidate struct {
	offset int
	dist   float64
}

// less orders by distance, then by offset.
func (c candidate) less(o candidate) bool {
	if c.dist != o.dist {
		return c.dist < o.dist
	}
	return c.offset < o.offset
}

// candidates is a max-heap: the root is the worst of the current best k.
type candidates []candidate

func (h candidates) Len() int           { return len(h) }
func (h candidates) Less(i, j int) bool { return h[j].less(h[i]) }
func (h candidates) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidates) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *candidates) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
