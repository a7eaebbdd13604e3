package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Query: "who won",
		Text:  "The home team.",
		Results: []domain.RetrievalResult{
			{Text: "The home team won 2-1 after extra time.", DocumentID: "d1", Title: "Cup final", Distance: 0.41},
			{Text: "Tickets sold out in an hour.", DocumentID: "d2", Title: "Ticket rush", Distance: 0.87},
			{Text: "Fans gathered outside.", DocumentID: "d1", Title: "Cup final", Sequence: 1, Distance: 1.02},
		},
		Sources: []domain.Source{
			{DocumentID: "d1", Title: "Cup final", Available: true},
			{DocumentID: "d2", Title: "Ticket rush", Available: false},
		},
	}
}

func TestNewSourceList(t *testing.T) {
	l := NewSourceList(nil)

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.SelectedResult())
	assert.Nil(t, l.Init())
	assert.Contains(t, l.View(), "No sources")
}

func TestSourceList_SetAnswer(t *testing.T) {
	l := NewSourceList(nil)
	l.SetAnswer(testAnswer())

	assert.Equal(t, 3, l.Count())
	assert.Equal(t, 0, l.Selected())
	assert.True(t, l.unavailable["d2"])
	assert.False(t, l.unavailable["d1"])

	l.SetAnswer(nil)
	assert.Equal(t, 0, l.Count())
}

func TestSourceList_Navigation(t *testing.T) {
	l := NewSourceList(nil)
	l.SetAnswer(testAnswer())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 2, l.Selected())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 1, l.Selected())
	assert.Equal(t, "d2", l.SelectedResult().DocumentID)
}

func TestSourceList_View(t *testing.T) {
	l := NewSourceList(nil)
	l.SetDimensions(100, 20)
	l.SetAnswer(testAnswer())

	view := l.View()

	assert.Contains(t, view, "Sources (3)")
	assert.Contains(t, view, "Cup final")
	assert.Contains(t, view, "0.41")
	assert.Contains(t, view, "no longer available")
	assert.Contains(t, view, "Tickets sold out")
}

func TestSourceList_ViewScrollsToSelection(t *testing.T) {
	l := NewSourceList(nil)
	l.SetDimensions(80, 4)
	l.SetAnswer(testAnswer())
	l.MoveDown()
	l.MoveDown()

	view := l.View()

	assert.Contains(t, view, "Fans gathered")
	assert.NotContains(t, view, "Tickets sold out")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "éé...", truncate("ééééééé", 5))
}
