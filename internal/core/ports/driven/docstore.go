package driven

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// DocumentStore persists documents.
// Backed by SQLite; the vector index is rebuilt from ListDocuments on cold start.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document. Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns every document, oldest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
