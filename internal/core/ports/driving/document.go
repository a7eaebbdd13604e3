package driving

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// DocumentService manages the stored corpus.
type DocumentService interface {
	// Add stores a document and indexes it. The ID and CreatedAt are assigned.
	// If indexing fails the document is not kept.
	Add(ctx context.Context, doc domain.Document) (*domain.Document, int, error)

	// Import normalises a raw file into documents and adds each one.
	// A limit above zero caps the number of documents taken from the file.
	Import(ctx context.Context, raw *domain.RawDocument, limit int) (domain.IngestStats, error)

	// List returns every stored document, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes a document from the store. Its chunks stay searchable
	// until the index is next rebuilt.
	Delete(ctx context.Context, documentID string) error
}
