package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ruminaider/claude-installer/internal/app"
)

// StatusBar renders the bottom row with selection counts, context and
// keyboard shortcuts for the current view.
type StatusBar struct {
	view     app.View
	tab      app.Tab
	selected int
	total    int
	target   string
	scope    string
	revision string
	width    int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetWidth sets the available width for rendering.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// Sync refreshes the status bar from the state machine.
func (s *StatusBar) Sync(a *app.App) {
	s.view = a.View()
	s.tab = a.Tab()
	s.selected, s.total = a.TabCounts(a.Tab())
	s.target = a.Target().Title()
	s.scope = ""
	if a.Target().SupportsScope() && a.Tab() == app.TabMCP {
		s.scope = a.Scope().String()
	}
	s.revision = a.Revision()
}

func (s StatusBar) shortcuts() []string {
	key := StatusBarKeyStyle.Render
	switch s.view {
	case app.ViewDiff:
		return []string{key("j/k") + ": scroll", key("q") + ": close"}
	case app.ViewEnvInput, app.ViewProjectPath:
		return []string{key("Enter") + ": submit", key("Esc") + ": cancel"}
	case app.ViewInstalling:
		return []string{key("Enter") + ": done", key("q") + ": quit"}
	default:
		keys := []string{key("i") + ": install", key("r") + ": remove", key("d") + ": diff"}
		if s.tab.HasDefault() {
			keys = append(keys, key("s")+": default")
		}
		if s.scope != "" {
			keys = append(keys, key("o")+": scope")
		}
		return append(keys, key("q")+": quit")
	}
}

// View renders the status bar.
func (s StatusBar) View() string {
	left := fmt.Sprintf("%d/%d %s selected · %s", s.selected, s.total, s.tab.Title(), s.target)
	if s.scope != "" {
		left += " · scope: " + s.scope
	}
	if s.revision != "" {
		left += " · " + s.revision
	}
	right := strings.Join(s.shortcuts(), " · ")

	available := s.width - 2 // StatusBarStyle padding
	gap := available - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	content := left + strings.Repeat(" ", gap) + right
	if s.width <= 0 {
		return StatusBarStyle.Render(content)
	}
	return StatusBarStyle.Width(s.width).Render(content)
}
