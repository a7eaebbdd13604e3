package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

func TestHistoryCmd(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		env := setupTestServices(t)

		out, err := env.run("history")

		require.NoError(t, err)
		assert.Contains(t, out, "No questions asked yet.")
	})

	t.Run("lists records", func(t *testing.T) {
		env := setupTestServices(t)
		ctx := context.Background()
		require.NoError(t, env.queryLog.InsertQuery(ctx, &domain.QueryRecord{
			ID: "q1", Query: "who won the final", DocumentIDs: []string{"d1", "d2"},
			CreatedAt: time.Now().Add(-time.Minute),
		}))
		require.NoError(t, env.queryLog.InsertQuery(ctx, &domain.QueryRecord{
			ID: "q2", Query: "storm damage", CreatedAt: time.Now(),
		}))

		out, err := env.run("history", "-n", "5")

		require.NoError(t, err)
		assert.Contains(t, out, "who won the final")
		assert.Contains(t, out, "Documents: d1, d2")
		assert.Contains(t, out, "storm damage")
	})

	t.Run("service not configured", func(t *testing.T) {
		env := setupTestServices(t)
		answerService = nil

		_, err := env.run("history")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "answer service not configured")
	})
}
