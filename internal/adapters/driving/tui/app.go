package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/views/ask"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// askView is the only screen.
	askView *ask.View

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		askView: ask.NewView(s, nil, ports.Answer),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// WithTopK sets how many chunks each question retrieves.
func (a *App) WithTopK(k int) *App {
	a.askView.WithTopK(k)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("newsrag"),
		a.askView.Init(),
	}
	if a.ports.Retrieval != nil {
		a.askView.SetLoading()
		cmds = append(cmds, a.loadIndex())
	}
	return tea.Batch(cmds...)
}

// loadIndex rebuilds the index from the document store unless it already
// holds chunks.
func (a *App) loadIndex() tea.Cmd {
	retrieval := a.ports.Retrieval
	ctx := a.ctx
	return func() tea.Msg {
		if size := retrieval.Size(); size > 0 {
			return messages.IndexLoaded{}
		}
		stats, err := retrieval.Rebuild(ctx)
		return messages.IndexLoaded{Stats: stats, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case messages.IndexLoaded:
		a.err = msg.Err
		chunks := 0
		if a.ports.Retrieval != nil {
			chunks = a.ports.Retrieval.Size()
		}
		a.askView.SetIndexStatus(chunks, msg.Err)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.AnswerCompleted:
		a.err = msg.Err
	}

	a.askView, cmd = a.askView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.askView.View()
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.askView.SetDimensions(width, height)
}

// Mode returns what the ask view is doing.
func (a *App) Mode() messages.Mode {
	return a.askView.Mode()
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app is ready to render.
func (a *App) Ready() bool {
	return a.ready
}

// Width returns the terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the terminal height.
func (a *App) Height() int {
	return a.height
}

// Ports returns the app's ports.
func (a *App) Ports() *Ports {
	return a.ports
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, ports *Ports, topK int) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}
	app.WithContext(ctx).WithTopK(topK)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
