package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/newsrag/internal/core/domain"
)

type mockAnswerService struct {
	answer    *domain.Answer
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockAnswerService) Ask(_ context.Context, query string, topK int) (*domain.Answer, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAnswerService) History(_ context.Context, _ int) ([]domain.QueryRecord, error) {
	return nil, nil
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Query:   "who won the final",
		Text:    "The home side won 2-1.",
		Context: "The home side won 2-1 after extra time.",
		Results: []domain.RetrievalResult{
			{Text: "The home side won 2-1 after extra time.", DocumentID: "d1", Title: "Cup final", Distance: 0.52},
			{Text: "Supporters celebrated in the square.", DocumentID: "d2", Title: "Celebrations", Distance: 0.91},
		},
		Sources: []domain.Source{
			{DocumentID: "d1", Title: "Cup final", Available: true},
			{DocumentID: "d2", Title: "Celebrations", Available: false},
		},
	}
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

// answered drives the view through a full question and answer.
func answered(t *testing.T, svc *mockAnswerService) *View {
	t.Helper()
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 40)
	v = typeText(v, "who won the final")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, messages.ModeThinking, v.Mode())

	v, _ = v.Update(v.ask("who won the final")())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Equal(t, messages.ModeInput, v.Mode())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_WithContextAndTopK(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.Same(t, v, v.WithContext(context.Background()))
	assert.Same(t, v, v.WithTopK(5))
	assert.Equal(t, 5, v.topK)
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, _ = v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 40, v.Height())
	assert.Equal(t, 116, v.answer.Width)
	assert.Equal(t, 14, v.answer.Height)
}

func TestView_SubmitAndAnswer(t *testing.T) {
	svc := &mockAnswerService{answer: testAnswer()}

	v := answered(t, svc)

	assert.Equal(t, "who won the final", svc.lastQuery)
	assert.Equal(t, 0, svc.lastTopK)
	assert.Equal(t, messages.ModeAnswer, v.Mode())
	assert.Equal(t, status.StateAnswered, v.Status())
	require.NotNil(t, v.Answer())
	assert.NoError(t, v.Err())

	view := v.View()
	assert.Contains(t, view, "The home side won 2-1.")
	assert.Contains(t, view, "Cup final")
	assert.Contains(t, view, "no longer available")
	assert.Contains(t, view, "2 sources")
}

func TestView_SubmitUsesTopK(t *testing.T) {
	svc := &mockAnswerService{answer: testAnswer()}
	v := NewView(nil, nil, svc).WithTopK(7)

	v.ask("q")()

	assert.Equal(t, 7, svc.lastTopK)
}

func TestView_SubmitBlankIgnored(t *testing.T) {
	v := NewView(nil, nil, &mockAnswerService{})
	v = typeText(v, "   ")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, messages.ModeInput, v.Mode())
}

func TestView_AskRequested(t *testing.T) {
	v := NewView(nil, nil, &mockAnswerService{})

	v, cmd := v.Update(messages.AskRequested{Query: "inflation outlook"})

	assert.NotNil(t, cmd)
	assert.Equal(t, messages.ModeThinking, v.Mode())
	assert.Equal(t, "inflation outlook", v.Query())
}

func TestView_NoLLM(t *testing.T) {
	a := testAnswer()
	a.Text = ""

	v := answered(t, &mockAnswerService{answer: a})

	assert.Contains(t, v.View(), "No LLM configured")
}

func TestView_AnswerError(t *testing.T) {
	svc := &mockAnswerService{err: errors.New("embedding failed")}

	v := answered(t, svc)

	assert.Equal(t, messages.ModeInput, v.Mode())
	assert.Equal(t, status.StateError, v.Status())
	assert.EqualError(t, v.Err(), "embedding failed")
	assert.Contains(t, v.View(), "embedding failed")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	msg := v.ask("q")()

	completed, ok := msg.(messages.AnswerCompleted)
	require.True(t, ok)
	assert.ErrorIs(t, completed.Err, ErrNoAnswerService)
}

func TestView_StaleAnswerDropped(t *testing.T) {
	v := NewView(nil, nil, &mockAnswerService{})
	v.submit("first")
	v.NewQuestion()
	v.submit("second")

	v, _ = v.Update(messages.AnswerCompleted{Query: "first", Answer: testAnswer()})

	assert.Equal(t, messages.ModeThinking, v.Mode())
	assert.Nil(t, v.Answer())
}

func TestView_KeysWhileThinking(t *testing.T) {
	v := NewView(nil, nil, &mockAnswerService{})
	v.submit("question")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	assert.Nil(t, cmd)
	assert.Equal(t, messages.ModeThinking, v.Mode())
	assert.Equal(t, "question", v.Query())
}

func TestView_SpinnerTicks(t *testing.T) {
	v := NewView(nil, nil, &mockAnswerService{})

	_, cmd := v.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)

	v.submit("question")
	_, cmd = v.Update(v.spinner.Tick())
	assert.NotNil(t, cmd)
}

func TestView_AnswerNavigation(t *testing.T) {
	v := answered(t, &mockAnswerService{answer: testAnswer()})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	require.NotNil(t, v.SelectedSource())
	assert.Equal(t, "d2", v.SelectedSource().DocumentID)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "d1", v.SelectedSource().DocumentID)
}

func TestView_NewQuestion(t *testing.T) {
	v := answered(t, &mockAnswerService{answer: testAnswer()})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	assert.NotNil(t, cmd)
	assert.Equal(t, messages.ModeInput, v.Mode())
	assert.Empty(t, v.Query())
	assert.Nil(t, v.Answer())
	assert.Nil(t, v.SelectedSource())
	assert.Equal(t, status.StateReady, v.Status())
}

func TestView_Quit(t *testing.T) {
	t.Run("esc while typing", func(t *testing.T) {
		v := NewView(nil, nil, nil)
		_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("q while typing is text", func(t *testing.T) {
		v := NewView(nil, nil, nil)
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		assert.Equal(t, "q", v.Query())
	})

	t.Run("q after an answer", func(t *testing.T) {
		v := answered(t, &mockAnswerService{answer: testAnswer()})
		_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestView_ErrorOccurred(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, status.StateError, v.Status())
}

func TestView_SetIndexStatus(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		v := NewView(nil, nil, nil)
		v.SetDimensions(100, 30)
		v.SetLoading()
		assert.Equal(t, status.StateLoading, v.Status())

		v.SetIndexStatus(12, nil)

		assert.Equal(t, status.StateReady, v.Status())
		assert.Contains(t, v.View(), "12 chunks")
	})

	t.Run("empty", func(t *testing.T) {
		v := NewView(nil, nil, nil)
		v.SetDimensions(100, 30)

		v.SetIndexStatus(0, nil)

		assert.Contains(t, v.View(), "No documents indexed")
	})

	t.Run("error", func(t *testing.T) {
		v := NewView(nil, nil, nil)

		v.SetIndexStatus(0, errors.New("store locked"))

		assert.Equal(t, status.StateError, v.Status())
	})
}
