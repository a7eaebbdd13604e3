package driven

// Chunker splits document text into ordered, overlapping windows.
// Implementations are pure: the same text always yields the same chunks.
type Chunker interface {
	// Chunk returns the windows of text in left-to-right order.
	// Empty text yields no chunks.
	Chunk(text string) ([]string, error)
}
