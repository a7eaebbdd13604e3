package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
	"github.com/custodia-labs/newsrag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// IndexFactory creates an empty vector index of the given dimension.
type IndexFactory func(dimensions int) (driven.VectorIndex, error)

// RetrievalService keeps chunk identities consistent between indexing and
// retrieval. Chunks are stored under the key "title|document_id|sequence".
type RetrievalService struct {
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	docStore driven.DocumentStore
	newIndex IndexFactory

	// writeMu serialises appends with rebuilds so a rebuild cannot drop
	// an ingest that lands between listing and swapping.
	writeMu sync.Mutex

	// indexed maps each document in the current index to its chunk count.
	// Guarded by writeMu and swapped together with the index.
	indexed map[string]int

	// mu guards the index pointer; the index locks its own contents.
	mu    sync.RWMutex
	index driven.VectorIndex
}

// NewRetrievalService creates a retrieval service with an empty index sized
// to the embedder. docStore is only needed by Rebuild and may be nil.
func NewRetrievalService(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	newIndex IndexFactory,
) (*RetrievalService, error) {
	index, err := newIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &RetrievalService{
		chunker:  chunker,
		embedder: embedder,
		docStore: docStore,
		newIndex: newIndex,
		indexed:  make(map[string]int),
		index:    index,
	}, nil
}

func (s *RetrievalService) current() driven.VectorIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Ingest chunks text, embeds every chunk in one batch and appends the batch
// to the index. Nothing is added unless the whole batch embeds. A document
// already in the index, for example one picked up by a concurrent Rebuild,
// is not added again.
func (s *RetrievalService) Ingest(ctx context.Context, documentID, title, text string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if n, ok := s.indexed[documentID]; ok {
		logger.Debug("Document %s is already indexed (%d chunks)", documentID, n)
		return n, nil
	}
	return s.ingestInto(ctx, s.current(), s.indexed, documentID, title, text)
}

func (s *RetrievalService) ingestInto(
	ctx context.Context, index driven.VectorIndex, indexed map[string]int, documentID, title, text string,
) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if strings.Contains(documentID, domain.ChunkKeySeparator) {
		return 0, fmt.Errorf("%w: document id %q contains %q",
			domain.ErrInvalidInput, documentID, domain.ChunkKeySeparator)
	}

	chunks, err := s.chunker.Chunk(text)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		logger.Debug("Document %s has no text, nothing to index", documentID)
		indexed[documentID] = 0
		return 0, nil
	}

	done := logger.Timed(fmt.Sprintf("embed %d chunks of %s", len(chunks), documentID))
	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	done()
	if err != nil {
		return 0, fmt.Errorf("embed document %s: %w", documentID, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed document %s: got %d vectors for %d chunks",
			documentID, len(vectors), len(chunks))
	}

	keys := make([]string, len(chunks))
	for i := range chunks {
		keys[i] = domain.ChunkRef{Title: title, DocumentID: documentID, Sequence: i}.Key()
	}

	if err := index.Add(vectors, keys, chunks); err != nil {
		return 0, fmt.Errorf("index document %s: %w", documentID, err)
	}

	indexed[documentID] = len(chunks)
	logger.Debug("Indexed %s: %d chunks", documentID, len(chunks))
	return len(chunks), nil
}

// Retrieve embeds the query, searches the index and maps each hit back to
// its document through the chunk key.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidInput, topK)
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for 1 query", len(vectors))
	}

	hits, err := s.current().Search(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		ref, err := domain.ParseChunkKey(hit.Key)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", hit.Offset, err)
		}
		results = append(results, domain.RetrievalResult{
			Text:       hit.Text,
			DocumentID: ref.DocumentID,
			Title:      ref.Title,
			Sequence:   ref.Sequence,
			Distance:   hit.Distance,
		})
	}

	logger.Debug("Retrieved %d of %d indexed chunks", len(results), s.Size())
	return results, nil
}

// Rebuild indexes every stored document into a fresh index and swaps it in.
// A document that fails to index is skipped with a warning. Searches keep
// using the old index until the swap.
func (s *RetrievalService) Rebuild(ctx context.Context) (domain.IngestStats, error) {
	var stats domain.IngestStats
	if s.docStore == nil {
		return stats, fmt.Errorf("%w: rebuild needs a document store", domain.ErrInvalidConfig)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	logger.Section("Index Rebuild")
	defer logger.Timed("rebuild index")()

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return stats, fmt.Errorf("list documents: %w", err)
	}

	index, err := s.newIndex(s.embedder.Dimensions())
	if err != nil {
		return stats, fmt.Errorf("create index: %w", err)
	}

	indexed := make(map[string]int, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n, err := s.ingestInto(ctx, index, indexed, doc.ID, doc.Title, doc.Text)
		if err != nil {
			logger.Warn("Skipping document %s (%s): %v", doc.ID, doc.Title, err)
			stats.Skipped++
			continue
		}
		stats.Documents++
		stats.Chunks += n
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	s.indexed = indexed

	logger.Info("Rebuilt index: %d documents, %d chunks, %d skipped", stats.Documents, stats.Chunks, stats.Skipped)
	return stats, nil
}

// Size returns the number of indexed chunks.
func (s *RetrievalService) Size() int {
	return s.current().Len()
}

// BuildContext joins retrieved chunk texts with newlines in ranked order.
func BuildContext(results []domain.RetrievalResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n")
}

// BuildPrompt fills the answer prompt template.
func BuildPrompt(contextText, query string) string {
	return fmt.Sprintf("Context: %s\n\nQuestion: %s\nAnswer:", contextText, query)
}
