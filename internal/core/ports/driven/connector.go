package driven

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// Connector reads raw files from a location such as a local directory.
type Connector interface {
	// Scan returns every readable file under the connector root.
	// The channels are closed when the scan finishes or ctx is cancelled.
	Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch listens for real-time changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}
