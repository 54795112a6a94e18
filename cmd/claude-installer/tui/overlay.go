package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Prompt is a modal single-line text input. Enter and Esc are handled by
// the caller; every other key goes to the input.
type Prompt struct {
	title   string
	message string
	input   textinput.Model
}

// NewPrompt creates a focused prompt. Secret inputs echo as bullets.
func NewPrompt(title, message, placeholder string, secret bool) Prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return Prompt{title: title, message: message, input: ti}
}

// Value returns the current input text.
func (p Prompt) Value() string {
	return p.input.Value()
}

// SetValue replaces the input text.
func (p *Prompt) SetValue(v string) {
	p.input.SetValue(v)
	p.input.CursorEnd()
}

// SetWidth sizes the input for a dialog of width w.
func (p *Prompt) SetWidth(w int) {
	inputWidth := w - 8 // overlay padding, border and prompt marker
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.input.Width = inputWidth
}

// Update delegates to the text input.
func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the dialog box. Use Composite to place it over a frame.
func (p Prompt) View() string {
	var b strings.Builder
	b.WriteString(OverlayTitleStyle.Render(p.title))
	b.WriteString("\n\n")
	if p.message != "" {
		b.WriteString(p.message)
		b.WriteString("\n\n")
	}
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	b.WriteString(HintStyle.Render("Enter: submit  Esc: cancel"))
	return OverlayStyle.Render(b.String())
}

// Composite places the overlay box centered on top of the background frame.
func Composite(background, overlay string, totalWidth, totalHeight int) string {
	if overlay == "" {
		return background
	}

	bgLines := strings.Split(background, "\n")
	for len(bgLines) < totalHeight {
		bgLines = append(bgLines, "")
	}

	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := 0
	for _, line := range overlayLines {
		if w := ansi.StringWidth(line); w > overlayWidth {
			overlayWidth = w
		}
	}

	startRow := (totalHeight - len(overlayLines)) / 2
	if startRow < 0 {
		startRow = 0
	}
	startCol := (totalWidth - overlayWidth) / 2
	if startCol < 0 {
		startCol = 0
	}

	for i, line := range overlayLines {
		row := startRow + i
		if row >= len(bgLines) {
			break
		}
		bg := bgLines[row]
		left := ansi.Truncate(bg, startCol, "")
		if w := ansi.StringWidth(left); w < startCol {
			left += strings.Repeat(" ", startCol-w)
		}
		right := ""
		if end := startCol + ansi.StringWidth(line); end < ansi.StringWidth(bg) {
			right = ansi.TruncateLeft(bg, end, "")
		}
		bgLines[row] = left + line + right
	}

	if totalHeight > 0 && len(bgLines) > totalHeight {
		bgLines = bgLines[:totalHeight]
	}
	return strings.Join(bgLines, "\n")
}

// overlayWidth picks a dialog width for a terminal of termWidth columns.
func overlayWidth(termWidth int) int {
	w := termWidth * 2 / 3
	if w < 40 {
		w = 40
	}
	if w > 72 {
		w = 72
	}
	return w
}
