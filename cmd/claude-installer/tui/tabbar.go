package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ruminaider/claude-installer/internal/app"
)

// TabBar renders the tab row along the top of the list view.
type TabBar struct {
	active app.Tab
	counts map[app.Tab][2]int // tab -> {selected, total}
	width  int
}

// NewTabBar creates a tab bar with the first tab active.
func NewTabBar() TabBar {
	return TabBar{counts: map[app.Tab][2]int{}}
}

// SetWidth sets the available width for rendering.
func (t *TabBar) SetWidth(w int) {
	t.width = w
}

// Sync copies the active tab and per-tab counts from the state machine.
func (t *TabBar) Sync(a *app.App) {
	t.active = a.Tab()
	for _, tab := range app.Tabs() {
		sel, total := a.TabCounts(tab)
		t.counts[tab] = [2]int{sel, total}
	}
}

// tabKey is the jump key of the tab at index i: 1-9 and 0 for the first
// ten, p for Plugins.
func tabKey(i int, tab app.Tab) string {
	switch {
	case tab == app.TabPlugins:
		return "p"
	case i < 10:
		return strconv.Itoa((i + 1) % 10)
	default:
		return ""
	}
}

// tabForKey resolves a jump key typed in the list view.
func tabForKey(key string) (app.Tab, bool) {
	for i, tab := range app.Tabs() {
		if k := tabKey(i, tab); k != "" && k == key {
			return tab, true
		}
	}
	return 0, false
}

// label is the tab text: its jump key, title and selection count.
func (t TabBar) label(i int, tab app.Tab) string {
	c := t.counts[tab]
	key := ""
	if k := tabKey(i, tab); k != "" {
		key = k + " "
	}
	if c[1] == 0 {
		return key + tab.Title()
	}
	return fmt.Sprintf("%s%s %d/%d", key, tab.Title(), c[0], c[1])
}

// View renders the tab bar as a single line, truncated to the width.
func (t TabBar) View() string {
	parts := make([]string, 0, len(app.Tabs()))
	for i, tab := range app.Tabs() {
		style := InactiveTabStyle
		if tab == t.active {
			style = ActiveTabStyle
		}
		parts = append(parts, style.Render(t.label(i, tab)))
	}
	row := strings.Join(parts, " ")
	if t.width > 0 && ansi.StringWidth(row) > t.width {
		row = ansi.Truncate(row, t.width-1, "…")
	}
	if t.width > 0 {
		return TabBarStyle.Width(t.width).Render(row)
	}
	return row
}
