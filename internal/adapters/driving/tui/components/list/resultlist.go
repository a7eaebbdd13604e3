// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// SourceList shows the chunks behind an answer in rank order.
type SourceList struct {
	results     []domain.RetrievalResult
	unavailable map[string]bool
	selected    int
	styles      *styles.Styles
	width       int
	height      int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *SourceList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(r.results)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(r.results))), "")

	// Each entry takes two lines.
	visible := (r.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.results) {
		end = len(r.results)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

// renderResult formats one ranked chunk with its distance and a preview.
func (r *SourceList) renderResult(index int, result *domain.RetrievalResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := result.Title
	if title == "" {
		title = result.DocumentID
	}
	maxTitle := r.width - 24
	if maxTitle < 10 {
		maxTitle = 10
	}
	title = truncate(title, maxTitle)

	label := fmt.Sprintf("%s[%d] %-*s", indicator, index+1, maxTitle, title)
	score := fmt.Sprintf("  %.2f", result.Distance)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(label + score)
	} else {
		titleLine = r.styles.Normal.Render(label) + r.styles.Muted.Render(score)
	}
	if r.unavailable[result.DocumentID] {
		titleLine += r.styles.Warning.Render("  (no longer available)")
	}

	previewWidth := r.width - 6
	if previewWidth < 20 {
		previewWidth = 20
	}
	preview := strings.Join(strings.Fields(result.Text), " ")
	previewLine := r.styles.Muted.Render("      " + truncate(preview, previewWidth))

	return titleLine + "\n" + previewLine
}

// truncate shortens s to n runes, ending with "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetAnswer shows the results of an answer and marks deleted documents.
func (r *SourceList) SetAnswer(answer *domain.Answer) {
	r.selected = 0
	r.results = nil
	r.unavailable = nil
	if answer == nil {
		return
	}
	r.results = answer.Results
	r.unavailable = make(map[string]bool)
	for _, src := range answer.Sources {
		if !src.Available {
			r.unavailable[src.DocumentID] = true
		}
	}
}

// Results returns the listed chunks.
func (r *SourceList) Results() []domain.RetrievalResult {
	return r.results
}

// Selected returns the index of the selected entry.
func (r *SourceList) Selected() int {
	return r.selected
}

// SelectedResult returns the selected chunk, or nil if the list is empty.
func (r *SourceList) SelectedResult() *domain.RetrievalResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *SourceList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *SourceList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *SourceList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of entries.
func (r *SourceList) Count() int {
	return len(r.results)
}
