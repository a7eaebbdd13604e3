package driven

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// QueryLogStore records asked questions and the documents retrieved for them.
type QueryLogStore interface {
	// InsertQuery stores a query record.
	InsertQuery(ctx context.Context, record *domain.QueryRecord) error

	// ListQueries returns the most recent records, newest first.
	// A limit of zero or less returns all records.
	ListQueries(ctx context.Context, limit int) ([]domain.QueryRecord, error)
}
