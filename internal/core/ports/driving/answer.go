package driving

import (
	"context"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// AnswerService answers questions grounded in retrieved chunks.
type AnswerService interface {
	// Ask retrieves context for query and generates an answer from it.
	// Without an LLM the answer text is empty and only context is returned.
	Ask(ctx context.Context, query string, topK int) (*domain.Answer, error)

	// History returns recently asked questions, newest first.
	History(ctx context.Context, limit int) ([]domain.QueryRecord, error)
}
