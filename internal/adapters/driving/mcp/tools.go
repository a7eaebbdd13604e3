package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find related news passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is a single retrieved passage.
type ChunkOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Sequence   int     `json:"sequence"`
	Distance   float64 `json:"distance"`
	Text       string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the news corpus"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages used as context (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Context string         `json:"context"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is a document cited by an answer.
type SourceOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Available  bool   `json:"available"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the news passages nearest a query, ranked by distance (lower is closer)",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the news corpus and cite the source articles",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, topK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = ChunkOutput{
			DocumentID: results[i].DocumentID,
			Title:      results[i].Title,
			Sequence:   results[i].Sequence,
			Distance:   results[i].Distance,
			Text:       results[i].Text,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, errors.New("answer service not configured")
	}

	answer, err := s.ports.Answer.Ask(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Context: answer.Context,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			DocumentID: src.DocumentID,
			Title:      src.Title,
			Available:  src.Available,
		}
	}

	return nil, output, nil
}
