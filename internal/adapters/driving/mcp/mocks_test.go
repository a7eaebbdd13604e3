package mcp

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results  []domain.RetrievalResult
	err      error
	lastTopK int
}

func (m *mockRetrievalService) Ingest(_ context.Context, _, _, _ string) (int, error) {
	return 0, m.err
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.lastTopK = topK
	return m.results, m.err
}

func (m *mockRetrievalService) Rebuild(_ context.Context) (domain.IngestStats, error) {
	return domain.IngestStats{}, m.err
}

func (m *mockRetrievalService) Size() int {
	return len(m.results)
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	lastTopK int
}

func (m *mockAnswerService) Ask(_ context.Context, query string, topK int) (*domain.Answer, error) {
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Query: query}, nil
}

func (m *mockAnswerService) History(_ context.Context, _ int) ([]domain.QueryRecord, error) {
	return nil, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) Add(_ context.Context, doc domain.Document) (*domain.Document, int, error) {
	return &doc, 0, m.err
}

func (m *mockDocumentService) Import(_ context.Context, _ *domain.RawDocument, _ int) (domain.IngestStats, error) {
	return domain.IngestStats{}, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
