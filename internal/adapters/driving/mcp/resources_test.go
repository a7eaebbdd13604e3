package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid URI", "newsrag://documents/doc-123", "doc-123"},
		{"uuid", "newsrag://documents/7f0c1a2e-0000-4000-8000-000000000000", "7f0c1a2e-0000-4000-8000-000000000000"},
		{"list URI", "newsrag://documents", ""},
		{"wrong scheme", "other://documents/doc-123", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("newsrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("lists documents", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			documents: []domain.Document{
				{
					ID:        "d1",
					Title:     "Cats",
					Text:      "Cats are small domesticated carnivores",
					Source:    "/news/cats.txt",
					CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
				},
			},
		}

		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Document: mockDocs})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("newsrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"id": "d1"`)
		assert.Contains(t, text, "Cats")
		assert.Contains(t, text, "/news/cats.txt")
		assert.Contains(t, text, "2024-05-01T12:00:00Z")
		assert.NotContains(t, text, "carnivores")
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Document:  &mockDocumentService{err: errors.New("db down")},
		})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("newsrag://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns title and text", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			document: &domain.Document{ID: "d1", Title: "Cats", Text: "Cats are small."},
		}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Document: mockDocs})
		require.NoError(t, err)

		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("newsrag://documents/d1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Cats\n\nCats are small.", result.Contents[0].Text)
	})

	t.Run("nil document service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("newsrag://documents/d1"))

		assert.Error(t, err)
	})

	t.Run("invalid URI", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Document: &mockDocumentService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("newsrag://documents/"))

		assert.Error(t, err)
	})

	t.Run("missing document", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Document:  &mockDocumentService{err: domain.ErrNotFound},
		})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("newsrag://documents/d9"))

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
