package driven

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// Normaliser turns raw file bytes into documents.
// Each normaliser handles specific MIME types (e.g., PDF, Markdown).
// A single file may hold many documents, such as a JSON article dump.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-100.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts documents from a raw file.
	// Returned documents have Title, Text, Source and MIMEType set; IDs are
	// assigned when they are stored.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)
}

// NormaliserRegistry selects the appropriate normaliser for a file.
type NormaliserRegistry interface {
	// Normalise transforms a raw file using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser handles the MIME type.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
