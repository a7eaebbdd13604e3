package flat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

func newTestIndex(t *testing.T, dim int) *Index {
	t.Helper()
	ix, err := New(dim)
	require.NoError(t, err)
	return ix
}

func TestNew(t *testing.T) {
	ix, err := New(384)
	require.NoError(t, err)
	assert.Equal(t, 384, ix.Dimensions())
	assert.Equal(t, 0, ix.Len())

	_, err = New(0)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestIndex_SearchEmpty(t *testing.T) {
	ix := newTestIndex(t, 2)

	hits, err := ix.Search([]float32{1, 1}, 5)

	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestIndex_SearchOrdersByDistance(t *testing.T) {
	ix := newTestIndex(t, 2)
	require.NoError(t, ix.Add(
		[][]float32{{10, 0}, {1, 0}, {0, 3}, {5, 5}},
		[]string{"far|d1|0", "near|d2|0", "mid|d3|0", "other|d4|0"},
		[]string{"far", "near", "mid", "other"},
	))

	hits, err := ix.Search([]float32{0, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "near", hits[0].Text)
	assert.Equal(t, "near|d2|0", hits[0].Key)
	assert.InDelta(t, 1.0, hits[0].Distance, 1e-9)
	assert.Equal(t, "mid", hits[1].Text)
	assert.InDelta(t, 3.0, hits[1].Distance, 1e-9)
	assert.Equal(t, "other", hits[2].Text)
	assert.InDelta(t, math.Sqrt(50), hits[2].Distance, 1e-9)
	assert.Equal(t, 1, hits[0].Offset)
}

func TestIndex_SearchKLargerThanIndex(t *testing.T) {
	ix := newTestIndex(t, 1)
	require.NoError(t, ix.Add([][]float32{{1}, {2}}, []string{"a", "b"}, []string{"a", "b"}))

	hits, err := ix.Search([]float32{0}, 10)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_TiesBrokenByOffset(t *testing.T) {
	ix := newTestIndex(t, 2)
	require.NoError(t, ix.Add(
		[][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {0, 0.5}},
		[]string{"e", "n", "w", "s", "c"},
		[]string{"e", "n", "w", "s", "c"},
	))

	hits, err := ix.Search([]float32{0, 0}, 4)
	require.NoError(t, err)

	got := make([]string, len(hits))
	for i, h := range hits {
		got[i] = h.Key
	}
	assert.Equal(t, []string{"c", "e", "n", "w"}, got)
}

func TestIndex_SearchIsStable(t *testing.T) {
	ix := newTestIndex(t, 4)
	rng := rand.New(rand.NewSource(7))
	vectors, keys, texts := randomEntries(rng, 200, 4)
	require.NoError(t, ix.Add(vectors, keys, texts))

	q := []float32{0.1, -0.2, 0.3, 0.05}
	first, err := ix.Search(q, 10)
	require.NoError(t, err)
	second, err := ix.Search(q, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIndex_SearchMatchesFullSort(t *testing.T) {
	const dim, n = 8, 500
	ix := newTestIndex(t, dim)
	rng := rand.New(rand.NewSource(42))
	vectors, keys, texts := randomEntries(rng, n, dim)
	require.NoError(t, ix.Add(vectors, keys, texts))

	q := vectors[17]
	hits, err := ix.Search(q, 25)
	require.NoError(t, err)

	type scored struct {
		off  int
		dist float64
	}
	all := make([]scored, n)
	for i, v := range vectors {
		all[i] = scored{off: i, dist: squaredL2(q, v)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })

	require.Len(t, hits, 25)
	for i, h := range hits {
		assert.Equal(t, all[i].off, h.Offset)
	}
	assert.Equal(t, "k17", hits[0].Key)
	assert.Zero(t, hits[0].Distance)
}

func TestIndex_AddValidation(t *testing.T) {
	t.Run("mismatched lengths leave index unchanged", func(t *testing.T) {
		ix := newTestIndex(t, 2)
		require.NoError(t, ix.Add([][]float32{{1, 1}}, []string{"a"}, []string{"a"}))

		err := ix.Add([][]float32{{1, 2}, {3, 4}}, []string{"b", "c"}, []string{"b"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.Equal(t, 1, ix.Len())
	})

	t.Run("wrong dimension rejects whole batch", func(t *testing.T) {
		ix := newTestIndex(t, 2)

		err := ix.Add([][]float32{{1, 2}, {1, 2, 3}}, []string{"a", "b"}, []string{"a", "b"})

		var dimErr *domain.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 1, dimErr.Position)
		assert.Equal(t, 2, dimErr.Want)
		assert.Equal(t, 3, dimErr.Got)
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		ix := newTestIndex(t, 2)
		assert.NoError(t, ix.Add(nil, nil, nil))
		assert.Equal(t, 0, ix.Len())
	})
}

func TestIndex_SearchValidation(t *testing.T) {
	ix := newTestIndex(t, 3)

	_, err := ix.Search([]float32{1, 2}, 1)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	_, err = ix.Search([]float32{1, 2, 3}, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestIndex_AddCopiesVectors(t *testing.T) {
	ix := newTestIndex(t, 2)
	v := []float32{1, 1}
	require.NoError(t, ix.Add([][]float32{v}, []string{"a"}, []string{"a"}))

	v[0] = 100

	hits, err := ix.Search([]float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Zero(t, hits[0].Distance)
}

func TestIndex_ConcurrentAddAndSearch(t *testing.T) {
	const dim = 4
	ix := newTestIndex(t, dim)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for b := 0; b < 25; b++ {
				vectors := make([][]float32, 3)
				keys := make([]string, 3)
				texts := make([]string, 3)
				for i := range vectors {
					id := fmt.Sprintf("w%d-b%d-%d", w, b, i)
					vectors[i] = []float32{float32(w), float32(b), float32(i), 1}
					keys[i] = "key-" + id
					texts[i] = "text-" + id
				}
				assert.NoError(t, ix.Add(vectors, keys, texts))
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hits, err := ix.Search([]float32{1, 1, 1, 1}, 5)
				assert.NoError(t, err)
				for _, h := range hits {
					assert.Equal(t, strings.TrimPrefix(h.Key, "key-"), strings.TrimPrefix(h.Text, "text-"))
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 4*25*3, ix.Len())
}

func randomEntries(rng *rand.Rand, n, dim int) ([][]float32, []string, []string) {
	vectors := make([][]float32, n)
	keys := make([]string, n)
	texts := make([]string, n)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		vectors[i] = v
		keys[i] = fmt.Sprintf("k%d", i)
		texts[i] = fmt.Sprintf("t%d", i)
	}
	return vectors, keys, texts
}
