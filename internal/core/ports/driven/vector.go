package driven

// VectorIndex stores embeddings with their chunk keys and texts, and answers
// nearest-neighbour queries by Euclidean distance.
//
// Entries live at insertion offsets that are never reused or compacted.
// Implementations must be safe for concurrent use: Search never observes
// a partially applied Add.
type VectorIndex interface {
	// Add appends one entry per vector. All three slices must have equal
	// length and every vector must match Dimensions. On error nothing is added.
	Add(vectors [][]float32, keys []string, texts []string) error

	// Search returns up to k entries nearest to query, closest first.
	// Equal distances are ordered by insertion offset. An empty index
	// returns an empty slice and no error.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored entries.
	Len() int

	// Dimensions returns the configured vector size.
	Dimensions() int
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// Key is the chunk key stored with the vector.
	Key string

	// Text is the chunk text stored with the vector.
	Text string

	// Distance is the Euclidean distance to the query.
	Distance float64

	// Offset is the insertion position of the entry.
	Offset int
}
