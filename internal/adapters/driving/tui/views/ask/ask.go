// Package ask provides the question answering view for the TUI.
package ask

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
)

// noLLMNotice replaces the answer when only retrieval is available.
const noLLMNotice = "No LLM configured; showing retrieved context."

// View is the ask screen: question input, answer pane, sources and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	sources   *list.SourceList
	statusbar *status.Bar
	answer    viewport.Model
	spinner   spinner.Model

	answerService driving.AnswerService
	ctx           context.Context
	topK          int

	mode    messages.Mode
	pending string
	result  *domain.Answer
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		sources:       list.NewSourceList(s),
		statusbar:     status.NewBar(s, km),
		answer:        viewport.New(80, 8),
		spinner:       sp,
		answerService: answerService,
		ctx:           context.Background(),
		mode:          messages.ModeInput,
	}
	v.SetDimensions(80, 24)
	v.ready = false
	return v
}

// WithContext sets the context used for answering.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithTopK sets how many chunks each question retrieves. Zero uses the
// service default.
func (v *View) WithTopK(k int) *View {
	v.topK = k
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskRequested:
		return v, v.submit(msg.Query)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if v.mode != messages.ModeThinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	if v.mode == messages.ModeInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	// Esc and ctrl+c quit from anywhere; plain q only outside the input.
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
		return v, tea.Quit
	}

	switch v.mode {
	case messages.ModeInput:
		if keymap.Matches(keyStr, v.keymap.Submit) {
			return v, v.submit(v.input.Value())
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case messages.ModeThinking:
		return v, nil

	case messages.ModeAnswer:
		switch {
		case keymap.Matches(keyStr, v.keymap.Quit):
			return v, tea.Quit
		case keymap.Matches(keyStr, v.keymap.NewQuestion):
			return v, v.NewQuestion()
		case keymap.Matches(keyStr, v.keymap.Up):
			v.sources.MoveUp()
		case keymap.Matches(keyStr, v.keymap.Down):
			v.sources.MoveDown()
		case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
			var cmd tea.Cmd
			v.answer, cmd = v.answer.Update(msg)
			return v, cmd
		}
	}

	return v, nil
}

// submit starts answering query. Blank queries are ignored.
func (v *View) submit(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	v.input.SetValue(query)
	v.input.Blur()
	v.mode = messages.ModeThinking
	v.pending = query
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateThinking)

	return tea.Batch(v.spinner.Tick, v.ask(query))
}

// ask calls the answer service off the update loop.
func (v *View) ask(query string) tea.Cmd {
	service := v.answerService
	ctx := v.ctx
	topK := v.topK
	return func() tea.Msg {
		if service == nil {
			return messages.AnswerCompleted{Query: query, Err: ErrNoAnswerService}
		}
		answer, err := service.Ask(ctx, query, topK)
		return messages.AnswerCompleted{Query: query, Answer: answer, Err: err}
	}
}

// handleAnswer shows a completed answer. Answers to a question that is no
// longer pending are dropped.
func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	if v.mode != messages.ModeThinking || msg.Query != v.pending {
		return
	}
	v.pending = ""

	if msg.Err != nil {
		v.mode = messages.ModeInput
		v.input.Focus()
		v.setError(msg.Err)
		return
	}

	v.result = msg.Answer
	v.mode = messages.ModeAnswer
	v.sources.SetAnswer(msg.Answer)
	v.statusbar.SetState(status.StateAnswered)
	if msg.Answer != nil {
		v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	}
	v.renderAnswer()
}

// renderAnswer fills the answer pane for the current width.
func (v *View) renderAnswer() {
	if v.result == nil {
		v.answer.SetContent("")
		return
	}

	text := v.result.Text
	style := v.styles.Normal
	if text == "" {
		text = noLLMNotice
		style = v.styles.Muted
	}
	v.answer.SetContent(style.Width(v.answer.Width).Render(text))
	v.answer.GotoTop()
}

// setError shows err in the view and the status bar.
func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	if err != nil {
		v.statusbar.SetMessage(err.Error())
	}
}

// NewQuestion clears the answer and focuses the input.
func (v *View) NewQuestion() tea.Cmd {
	v.mode = messages.ModeInput
	v.pending = ""
	v.result = nil
	v.err = nil
	v.sources.SetAnswer(nil)
	v.answer.SetContent("")
	v.input.Reset()
	v.statusbar.Clear()
	return v.input.Focus()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("newsrag"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	switch v.mode {
	case messages.ModeThinking:
		sections = append(sections, v.spinner.View()+v.styles.Muted.Render(" Thinking..."), "")
	case messages.ModeAnswer:
		sections = append(sections,
			v.styles.Subtitle.Render("Answer"),
			v.styles.AnswerPane.Render(v.answer.View()),
			"",
			v.sources.View(),
			"",
		)
	case messages.ModeInput:
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions and splits height between the
// answer pane and the sources.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Header, input, titles, borders and status take about twelve lines.
	body := height - 12
	if body < 6 {
		body = 6
	}
	answerHeight := body / 2
	v.answer.Width = width - 4
	if v.answer.Width < 20 {
		v.answer.Width = 20
	}
	v.answer.Height = answerHeight
	v.sources.SetDimensions(width, body-answerHeight)
	v.renderAnswer()
}

// SetIndexStatus shows the index size, or an error if loading failed.
func (v *View) SetIndexStatus(chunks int, err error) {
	if err != nil {
		v.setError(err)
		return
	}
	v.statusbar.SetChunkCount(chunks)
	if v.statusbar.State() == status.StateLoading {
		v.statusbar.SetState(status.StateReady)
	}
	if chunks == 0 {
		v.statusbar.SetMessage("No documents indexed. Run newsrag ingest first.")
	}
}

// SetLoading marks the index as loading.
func (v *View) SetLoading() {
	v.statusbar.SetState(status.StateLoading)
}

// Mode returns what the view is doing.
func (v *View) Mode() messages.Mode {
	return v.mode
}

// Query returns the current question text.
func (v *View) Query() string {
	return v.input.Value()
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// SelectedSource returns the highlighted chunk, or nil.
func (v *View) SelectedSource() *domain.RetrievalResult {
	return v.sources.SelectedResult()
}
