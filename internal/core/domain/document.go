package domain

import "time"

// Document is a news article held in the document store.
// Once indexed it is immutable; re-ingesting the same text creates a new document.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable headline.
	Title string

	// Text is the full article body that gets chunked.
	Text string

	// Source is where the document came from (file path, URL or "stdin").
	Source string

	// MIMEType is the content type the document was normalised from.
	MIMEType string

	// CreatedAt is when the document was stored.
	CreatedAt time.Time
}

// Chunk is a contiguous window of a document's text.
// Chunks are derived by the chunker and never created on their own.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Sequence is the zero-based position of the chunk within the document.
	Sequence int

	// Text is the chunk content.
	Text string
}
