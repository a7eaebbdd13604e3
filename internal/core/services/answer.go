package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
	"github.com/custodia-labs/newsrag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// DefaultAnswerMaxTokens caps generated answers when no limit is configured.
const DefaultAnswerMaxTokens = 512

// AnswerService answers questions from retrieved context.
type AnswerService struct {
	retrieval driving.RetrievalService
	docStore  driven.DocumentStore
	llm       driven.LLMService
	queryLog  driven.QueryLogStore
	topK      int
	maxTokens int
	now       func() time.Time
}

// NewAnswerService creates an answer service. llm may be nil, in which case
// Ask returns the retrieved context without an answer.
func NewAnswerService(
	retrieval driving.RetrievalService,
	docStore driven.DocumentStore,
	llm driven.LLMService,
) *AnswerService {
	return &AnswerService{
		retrieval: retrieval,
		docStore:  docStore,
		llm:       llm,
		topK:      domain.DefaultTopK,
		maxTokens: DefaultAnswerMaxTokens,
		now:       time.Now,
	}
}

// SetQueryLogStore enables logging of asked questions.
func (s *AnswerService) SetQueryLogStore(store driven.QueryLogStore) {
	s.queryLog = store
}

// SetDefaultTopK sets the top_k used when Ask is called with zero.
func (s *AnswerService) SetDefaultTopK(topK int) {
	if topK > 0 {
		s.topK = topK
	}
}

// SetMaxTokens sets the generation limit passed to the LLM.
func (s *AnswerService) SetMaxTokens(maxTokens int) {
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
}

// Ask retrieves the chunks nearest query, builds the prompt context and,
// when an LLM is configured, generates an answer from it.
func (s *AnswerService) Ask(ctx context.Context, query string, topK int) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.topK
	}

	results, err := s.retrieval.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Query:   query,
		Context: BuildContext(results),
		Results: results,
	}

	if s.llm != nil {
		logger.Section("Answer Generation")
		logger.Debug("Model: %s, context: %d chars", s.llm.ModelName(), len(answer.Context))

		done := logger.Timed("generate answer")
		text, err := s.llm.Generate(ctx, BuildPrompt(answer.Context, query), driven.GenerateOptions{
			MaxTokens: s.maxTokens,
		})
		done()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		answer.Text = strings.TrimSpace(text)
	}

	answer.Sources = s.resolveSources(ctx, results)
	s.logQuery(ctx, answer)

	return answer, nil
}

// resolveSources looks up each distinct document in ranked order. Documents
// deleted since indexing are reported as unavailable.
func (s *AnswerService) resolveSources(ctx context.Context, results []domain.RetrievalResult) []domain.Source {
	seen := make(map[string]bool, len(results))
	sources := make([]domain.Source, 0, len(results))

	for _, r := range results {
		if seen[r.DocumentID] {
			continue
		}
		seen[r.DocumentID] = true

		source := domain.Source{DocumentID: r.DocumentID, Title: r.Title}
		if s.docStore != nil {
			doc, err := s.docStore.GetDocument(ctx, r.DocumentID)
			switch {
			case err == nil:
				source.Title = doc.Title
				source.Available = true
			case errors.Is(err, domain.ErrNotFound):
				logger.Debug("Source %s no longer available", r.DocumentID)
			default:
				logger.Warn("Failed to resolve source %s: %v", r.DocumentID, err)
			}
		}
		sources = append(sources, source)
	}

	return sources
}

func (s *AnswerService) logQuery(ctx context.Context, answer *domain.Answer) {
	if s.queryLog == nil {
		return
	}

	ids := make([]string, len(answer.Sources))
	for i, src := range answer.Sources {
		ids[i] = src.DocumentID
	}

	record := &domain.QueryRecord{
		ID:          uuid.NewString(),
		Query:       answer.Query,
		Answer:      answer.Text,
		DocumentIDs: ids,
		CreatedAt:   s.now(),
	}
	if err := s.queryLog.InsertQuery(ctx, record); err != nil {
		logger.Warn("Failed to log query: %v", err)
	}
}

// History returns recently asked questions, newest first.
func (s *AnswerService) History(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if s.queryLog == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.queryLog.ListQueries(ctx, limit)
}
