package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/newsrag/internal/core/domain"
)

func noEnv(string) string { return "" }

func TestResolvePaths(t *testing.T) {
	home := filepath.Join("/home", "reader")

	t.Run("defaults under home", func(t *testing.T) {
		p := resolvePaths("", home, noEnv)

		assert.Equal(t, filepath.Join(home, ".newsrag"), p.configDir)
		assert.Equal(t, filepath.Join(home, ".newsrag", "data"), p.dataDir)
	})

	t.Run("environment", func(t *testing.T) {
		p := resolvePaths("", home, func(key string) string {
			if key == file.EnvDataDir {
				return "/srv/newsrag"
			}
			return ""
		})

		assert.Equal(t, "/srv/newsrag", p.dataDir)
	})

	t.Run("flag wins", func(t *testing.T) {
		p := resolvePaths("/tmp/flag", home, func(string) string { return "/srv/newsrag" })

		assert.Equal(t, "/tmp/flag", p.dataDir)
	})
}

func testPaths(t *testing.T) paths {
	t.Helper()
	root := t.TempDir()
	return paths{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

func TestWire_Defaults(t *testing.T) {
	ctx := context.Background()

	s, cleanup, err := wire(ctx, testPaths(t), noEnv)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })

	require.NotNil(t, s.Document)
	require.NotNil(t, s.Retrieval)
	require.NotNil(t, s.Answer)
	require.NotNil(t, s.Settings)
	require.NotNil(t, s.Check)

	doc, chunks, err := s.Document.Add(ctx, domain.Document{
		Title: "Cats",
		Text:  "Cats are small domesticated felines kept as pets.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, chunks)

	answer, err := s.Answer.Ask(ctx, "feline pets", 0)
	require.NoError(t, err)
	assert.Empty(t, answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, doc.ID, answer.Sources[0].DocumentID)

	checks := s.Check(ctx)
	require.Len(t, checks, 1)
	assert.Equal(t, "embedding", checks[0].Role)
	assert.Equal(t, domain.AIProviderHash, checks[0].Provider)
	assert.NoError(t, checks[0].Err)
}

func TestWire_RebuildsFromStore(t *testing.T) {
	ctx := context.Background()
	p := testPaths(t)

	s, cleanup, err := wire(ctx, p, noEnv)
	require.NoError(t, err)
	_, _, err = s.Document.Add(ctx, domain.Document{Title: "Cats", Text: "Cats are small domesticated felines."})
	require.NoError(t, err)
	require.NoError(t, cleanup())

	s, cleanup, err = wire(ctx, p, noEnv)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })
	assert.Equal(t, 0, s.Retrieval.Size())

	stats, err := s.Retrieval.Rebuild(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, s.Retrieval.Size())
}

func TestWire_LLMWithoutKey(t *testing.T) {
	ctx := context.Background()
	p := testPaths(t)
	store, err := file.NewConfigStore(p.configDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.provider", "openai"))

	s, cleanup, err := wire(ctx, p, noEnv)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })

	checks := s.Check(ctx)
	require.Len(t, checks, 2)
	assert.Equal(t, "llm", checks[1].Role)
	assert.ErrorIs(t, checks[1].Err, domain.ErrInvalidConfig)
}

func TestWire_InvalidConfigFallsBack(t *testing.T) {
	ctx := context.Background()
	p := testPaths(t)
	store, err := file.NewConfigStore(p.configDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("chunk.overlap", 9000))

	s, cleanup, err := wire(ctx, p, noEnv)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })

	assert.Equal(t, 0, s.Retrieval.Size())
	assert.Contains(t, s.Settings.Keys(), "chunk.overlap")
}
