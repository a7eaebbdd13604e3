package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// Ensure QueryLogStore implements the interface.
var _ driven.QueryLogStore = (*QueryLogStore)(nil)

// QueryLogStore is an in-memory implementation of driven.QueryLogStore.
type QueryLogStore struct {
	mu      sync.RWMutex
	records []domain.QueryRecord
	ids     map[string]struct{}
}

// NewQueryLogStore creates a new in-memory query log.
func NewQueryLogStore() *QueryLogStore {
	return &QueryLogStore{ids: make(map[string]struct{})}
}

// InsertQuery stores a query record.
func (s *QueryLogStore) InsertQuery(_ context.Context, record *domain.QueryRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("%w: query id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[record.ID]; ok {
		return fmt.Errorf("%w: duplicate query id %s", domain.ErrInvalidInput, record.ID)
	}

	stored := *record
	stored.DocumentIDs = append([]string(nil), record.DocumentIDs...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records = append(s.records, stored)
	s.ids[record.ID] = struct{}{}
	return nil
}

// ListQueries returns the most recent records, newest first.
func (s *QueryLogStore) ListQueries(_ context.Context, limit int) ([]domain.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.QueryRecord, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
