package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ruminaider/claude-installer/internal/app"
)

// View satisfies tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.app == nil {
		return m.loadingView()
	}

	switch m.app.View() {
	case app.ViewDiff:
		return m.diffView()
	case app.ViewInstalling:
		return m.installingView()
	case app.ViewEnvInput, app.ViewProjectPath:
		return Composite(m.listView(), m.prompt.View(), m.width, m.height)
	default:
		return m.listView()
	}
}

func (m Model) loadingView() string {
	return fmt.Sprintf("\n  %s %s\n\n  %s\n",
		m.spinner.View(),
		TitleStyle.Render(m.title),
		DetailStyle.Render("Scanning source bundle and querying installed state..."))
}

func (m Model) header() string {
	h := TitleStyle.Render(m.title) + DetailStyle.Render(" → "+m.app.Target().Title())
	if m.app.Refreshing() {
		h += " " + m.spinner.View()
	}
	return h
}

// footer is the status message line followed by the status bar.
func (m Model) footer() string {
	msg := m.app.Status()
	if m.app.QuitPending() {
		msg = "Quitting once the queue drains..."
	}
	line := MessageStyle.Render(ansi.Truncate(msg, max(m.width, 1), "…"))
	return line + "\n" + m.statusBar.View()
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.tabBar.View())
	b.WriteString("\n")

	// header, tab bar, message line and status bar
	height := max(m.height-4, 1)
	rows := m.app.Rows()
	lines := make([]string, 0, height)
	if len(rows) == 0 {
		lines = append(lines, EmptyStyle.Render("  Nothing in "+m.app.Tab().Title()))
	} else {
		start, end := window(m.app.Cursor(), len(rows), height)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderRow(rows[i], i == m.app.Cursor()))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

// window returns the visible row range keeping cursor on screen.
func window(cursor, n, height int) (start, end int) {
	if n <= height {
		return 0, n
	}
	start = cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

func (m Model) renderRow(r app.Row, current bool) string {
	box := "[ ]"
	if r.Selected {
		box = SelectedStyle.Render("[x]")
	}
	mark := " "
	if r.Default {
		mark = DefaultMarkStyle.Render("★")
	}
	name := r.Name
	if current {
		name = CursorStyle.Render(name)
	}
	cursor := "  "
	if current {
		cursor = CursorStyle.Render("›") + " "
	}
	line := fmt.Sprintf("%s%s %s %s %s", cursor, box, mark, name, statusStyle(r.Status).Render("("+r.Status+")"))
	if r.Detail != "" {
		room := m.width - ansi.StringWidth(line) - 3
		if room > 8 {
			line += "  " + DetailStyle.Render(ansi.Truncate(r.Detail, room, "…"))
		}
	}
	return line
}

func (m Model) diffView() string {
	title := TitleStyle.Render(m.app.DiffTitle())
	if n := len(m.app.DiffLines()); n > m.diff.Height {
		title += DetailStyle.Render(fmt.Sprintf("  %d%%", int(m.diff.ScrollPercent()*100)))
	}
	return title + "\n" + m.diff.View() + "\n" + m.footer()
}

// renderDiff colors unified diff lines.
func renderDiff(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			out[i] = diffHeaderStyle.Render(l)
		case strings.HasPrefix(l, "@@"):
			out[i] = diffHunkStyle.Render(l)
		case strings.HasPrefix(l, "+"):
			out[i] = diffAddStyle.Render(l)
		case strings.HasPrefix(l, "-"):
			out[i] = diffRemoveStyle.Render(l)
		default:
			out[i] = l
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) installingView() string {
	a := m.app
	done, total := a.Progress()

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	state := "Processing"
	switch {
	case a.Complete():
		state = "Complete"
	case a.Refreshing():
		state = "Refreshing"
	}
	prefix := "  "
	if !a.Complete() {
		prefix = m.spinner.View() + " "
	}
	b.WriteString(fmt.Sprintf("%s%s %d/%d\n", prefix, OverlayTitleStyle.Render(state), done, total))
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	b.WriteString("  " + m.progress.ViewAs(pct) + "\n\n")

	// header, blank, state, progress, blank, hint, message, status bar
	height := max(m.height-8, 1)
	log := a.Log()
	if len(log) > height {
		log = log[len(log)-height:]
	}
	for _, e := range log {
		b.WriteString("  " + renderLogEntry(e, m.width-4) + "\n")
	}
	for i := len(log); i < height; i++ {
		b.WriteString("\n")
	}

	if a.Complete() {
		b.WriteString(HintStyle.Render("  Press Enter to return to the list"))
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func renderLogEntry(e app.LogEntry, width int) string {
	style, ok := logStyles[e.Level]
	if !ok {
		style = lipgloss.NewStyle()
	}
	marker := style.Render(fmt.Sprintf("%-4s", e.Level.String()))
	msg := e.Message
	if width > 10 {
		msg = ansi.Truncate(msg, width-5, "…")
	}
	return marker + " " + msg
}

func envMessage(p app.EnvPrompt) string {
	return fmt.Sprintf("%s is not set in mcps/.env or the environment (%d of %d).\nLeave empty to omit it.",
		p.Key, p.Index, p.Total)
}
