package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
)

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockRetrievalService returns fixed results and records the requested top_k.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	topK    int
}

func (m *mockRetrievalService) Ingest(_ context.Context, _, _, _ string) (int, error) {
	return 0, nil
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	if topK < len(m.results) {
		return m.results[:topK], nil
	}
	return m.results, nil
}

func (m *mockRetrievalService) Rebuild(_ context.Context) (domain.IngestStats, error) {
	return domain.IngestStats{}, nil
}

func (m *mockRetrievalService) Size() int {
	return len(m.results)
}

// failingQueryLog rejects every insert.
type failingQueryLog struct{}

func (failingQueryLog) InsertQuery(_ context.Context, _ *domain.QueryRecord) error {
	return assert.AnError
}

func (failingQueryLog) ListQueries(_ context.Context, _ int) ([]domain.QueryRecord, error) {
	return nil, assert.AnError
}

func setupAnswerStore(t *testing.T) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "d1", Title: "Cats", Text: "..."}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "d2", Title: "Dogs", Text: "..."}))
	return store
}

func rankedResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{Text: "Cats purr.", DocumentID: "d1", Title: "Cats", Sequence: 0, Distance: 0.1},
		{Text: "Dogs bark.", DocumentID: "d2", Title: "Dogs", Sequence: 0, Distance: 0.2},
		{Text: "Cats sleep.", DocumentID: "d1", Title: "Cats", Sequence: 1, Distance: 0.3},
		{Text: "Gone.", DocumentID: "d9", Title: "Deleted story", Sequence: 0, Distance: 0.4},
	}
}

func TestAnswerService_Ask(t *testing.T) {
	retrieval := &mockRetrievalService{results: rankedResults()}
	llm := &mockLLMService{response: "  Cats purr and sleep.\n"}
	queryLog := memory.NewQueryLogStore()

	svc := NewAnswerService(retrieval, setupAnswerStore(t), llm)
	svc.SetQueryLogStore(queryLog)
	svc.SetMaxTokens(256)

	answer, err := svc.Ask(context.Background(), "  what do cats do?  ", 4)
	require.NoError(t, err)

	assert.Equal(t, "what do cats do?", answer.Query)
	assert.Equal(t, "Cats purr and sleep.", answer.Text)
	assert.Equal(t, "Cats purr.\nDogs bark.\nCats sleep.\nGone.", answer.Context)
	assert.Len(t, answer.Results, 4)

	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "Context: Cats purr.\nDogs bark.\nCats sleep.\nGone.\n\nQuestion: what do cats do?\nAnswer:", llm.prompts[0])
	assert.Equal(t, 256, llm.opts[0].MaxTokens)

	assert.Equal(t, []domain.Source{
		{DocumentID: "d1", Title: "Cats", Available: true},
		{DocumentID: "d2", Title: "Dogs", Available: true},
		{DocumentID: "d9", Title: "Deleted story", Available: false},
	}, answer.Sources)

	records, err := queryLog.ListQueries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "what do cats do?", records[0].Query)
	assert.Equal(t, "Cats purr and sleep.", records[0].Answer)
	assert.Equal(t, []string{"d1", "d2", "d9"}, records[0].DocumentIDs)
	assert.NotEmpty(t, records[0].ID)
}

func TestAnswerService_Ask_DefaultTopK(t *testing.T) {
	retrieval := &mockRetrievalService{results: rankedResults()}
	svc := NewAnswerService(retrieval, nil, nil)

	_, err := svc.Ask(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, retrieval.topK)

	svc.SetDefaultTopK(2)
	_, err = svc.Ask(context.Background(), "q", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, retrieval.topK)

	svc.SetDefaultTopK(0)
	_, err = svc.Ask(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, retrieval.topK, "non-positive default is ignored")
}

func TestAnswerService_Ask_WithoutLLM(t *testing.T) {
	svc := NewAnswerService(&mockRetrievalService{results: rankedResults()}, nil, nil)

	answer, err := svc.Ask(context.Background(), "cats", 2)
	require.NoError(t, err)
	assert.Empty(t, answer.Text)
	assert.Equal(t, "Cats purr.\nDogs bark.", answer.Context)

	// Without a store titles come from the chunk keys and nothing is verified.
	assert.Equal(t, []domain.Source{
		{DocumentID: "d1", Title: "Cats"},
		{DocumentID: "d2", Title: "Dogs"},
	}, answer.Sources)
}

func TestAnswerService_Ask_EmptyIndexStillGenerates(t *testing.T) {
	llm := &mockLLMService{response: "I don't know."}
	svc := NewAnswerService(&mockRetrievalService{}, nil, llm)

	answer, err := svc.Ask(context.Background(), "anything?", 3)
	require.NoError(t, err)
	assert.Empty(t, answer.Results)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "I don't know.", answer.Text)
	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "Context: \n\nQuestion: anything?\nAnswer:", llm.prompts[0])
}

func TestAnswerService_Ask_Errors(t *testing.T) {
	t.Run("empty question", func(t *testing.T) {
		svc := NewAnswerService(&mockRetrievalService{}, nil, nil)
		_, err := svc.Ask(context.Background(), "   ", 3)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("retrieval failure", func(t *testing.T) {
		svc := NewAnswerService(&mockRetrievalService{err: domain.ErrModelUnavailable}, nil, nil)
		_, err := svc.Ask(context.Background(), "q", 3)
		assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	})

	t.Run("llm failure", func(t *testing.T) {
		queryLog := memory.NewQueryLogStore()
		svc := NewAnswerService(&mockRetrievalService{results: rankedResults()}, nil, &mockLLMService{err: assert.AnError})
		svc.SetQueryLogStore(queryLog)

		_, err := svc.Ask(context.Background(), "q", 3)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.ErrorIs(t, err, assert.AnError)

		records, err := queryLog.ListQueries(context.Background(), 0)
		require.NoError(t, err)
		assert.Empty(t, records, "failed questions are not logged")
	})
}

func TestAnswerService_Ask_QueryLogFailureIsNotFatal(t *testing.T) {
	svc := NewAnswerService(&mockRetrievalService{results: rankedResults()}, nil, &mockLLMService{response: "ok"})
	svc.SetQueryLogStore(failingQueryLog{})

	answer, err := svc.Ask(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Text)
}

func TestAnswerService_History(t *testing.T) {
	svc := NewAnswerService(&mockRetrievalService{results: rankedResults()}, nil, nil)

	_, err := svc.History(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	queryLog := memory.NewQueryLogStore()
	svc.SetQueryLogStore(queryLog)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, q := range []string{"first", "second", "third"} {
		_, err := svc.Ask(context.Background(), q, 1)
		require.NoError(t, err)
	}

	records, err := svc.History(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Query)
	assert.Equal(t, "second", records[1].Query)
	assert.Equal(t, []string{"d1"}, records[0].DocumentIDs)
}
