package domain

import "time"

// RetrievalResult is a single ranked chunk returned for a query.
type RetrievalResult struct {
	// Text is the chunk content.
	Text string

	// DocumentID identifies the source document of the chunk.
	DocumentID string

	// Title is the document title carried in the chunk key.
	Title string

	// Sequence is the chunk position within its document.
	Sequence int

	// Distance is the Euclidean distance to the query; lower is closer.
	Distance float64
}

// Source is a document cited by an answer.
type Source struct {
	DocumentID string
	Title      string

	// Available is false when the document was deleted after it was indexed.
	Available bool
}

// Answer is the result of a question answered against the corpus.
type Answer struct {
	// Query is the question as asked.
	Query string

	// Text is the generated answer. Empty when no LLM is configured.
	Text string

	// Context is the prompt context built from the retrieved chunks.
	Context string

	// Results are the retrieved chunks in ranked order.
	Results []RetrievalResult

	// Sources are the distinct documents behind Results, in first-seen order.
	Sources []Source
}

// QueryRecord is a logged question with the documents it retrieved.
type QueryRecord struct {
	ID          string
	Query       string
	Answer      string
	DocumentIDs []string
	CreatedAt   time.Time
}

// IngestStats summarises an import run.
type IngestStats struct {
	Documents int
	Chunks    int
	Skipped   int
}
