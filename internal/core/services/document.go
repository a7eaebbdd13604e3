package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
	"github.com/custodia-labs/newsrag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService keeps the document store and the vector index in step.
type DocumentService struct {
	docStore    driven.DocumentStore
	retrieval   driving.RetrievalService
	normalisers driven.NormaliserRegistry
	now         func() time.Time
}

// NewDocumentService creates a new document service.
// normalisers is only needed by Import and may be nil.
func NewDocumentService(
	docStore driven.DocumentStore,
	retrieval driving.RetrievalService,
	normalisers driven.NormaliserRegistry,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		retrieval:   retrieval,
		normalisers: normalisers,
		now:         time.Now,
	}
}

// Add assigns an ID, stores the document and indexes it. When indexing fails
// the stored row is removed again.
func (s *DocumentService) Add(ctx context.Context, doc domain.Document) (*domain.Document, int, error) {
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		return nil, 0, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, 0, fmt.Errorf("%w: document %q has no text", domain.ErrInvalidInput, doc.Title)
	}

	doc.ID = uuid.NewString()
	doc.CreatedAt = s.now().UTC()

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, 0, fmt.Errorf("save document: %w", err)
	}

	chunks, err := s.retrieval.Ingest(ctx, doc.ID, doc.Title, doc.Text)
	if err != nil {
		// Use a fresh context so a cancelled ingest still cleans up.
		if delErr := s.docStore.DeleteDocument(context.WithoutCancel(ctx), doc.ID); delErr != nil {
			logger.Warn("Failed to remove document %s after indexing error: %v", doc.ID, delErr)
		}
		return nil, 0, err
	}

	logger.Debug("Added document %s %q (%d chunks)", doc.ID, doc.Title, chunks)
	return &doc, chunks, nil
}

// Import normalises a raw file and adds each document it contains.
// Invalid documents are skipped; any other error stops the import.
func (s *DocumentService) Import(ctx context.Context, raw *domain.RawDocument, limit int) (domain.IngestStats, error) {
	var stats domain.IngestStats
	if s.normalisers == nil {
		return stats, domain.ErrNotImplemented
	}
	if raw == nil {
		return stats, domain.ErrInvalidInput
	}

	logger.Section("Import")
	logger.Debug("Importing %s (%s)", raw.URI, raw.MIMEType)

	docs, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return stats, err
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		_, chunks, err := s.Add(ctx, doc)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				logger.Warn("Skipping %q from %s: %v", doc.Title, raw.URI, err)
				stats.Skipped++
				continue
			}
			return stats, err
		}
		stats.Documents++
		stats.Chunks += chunks
	}

	logger.Debug("Imported %s: %d documents, %d chunks, %d skipped",
		raw.URI, stats.Documents, stats.Chunks, stats.Skipped)
	return stats, nil
}

// List returns every stored document, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	// The store lists oldest first; reversing keeps insertion order among
	// documents created in the same instant.
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Delete removes a document from the store. Its chunks stay in the index
// and are reported as unavailable sources until the next rebuild.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Debug("Deleted document %s; index entries remain until rebuild", documentID)
	return nil
}
