package driving

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// RetrievalService indexes document text and retrieves the chunks nearest a query.
type RetrievalService interface {
	// Ingest chunks, embeds and indexes a document's text.
	// Either every chunk is indexed or none is. Returns the chunk count.
	Ingest(ctx context.Context, documentID, title, text string) (int, error)

	// Retrieve returns up to topK chunks ranked by ascending distance.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)

	// Rebuild replaces the index with one built from every stored document.
	Rebuild(ctx context.Context) (domain.IngestStats, error)

	// Size returns the number of indexed chunks.
	Size() int
}
