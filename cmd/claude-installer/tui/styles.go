package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"github.com/ruminaider/claude-installer/internal/app"
)

// Catppuccin Mocha palette.
var flavor = catppuccin.Mocha

var (
	colorBase     = lipgloss.Color(flavor.Base().Hex)
	colorMantle   = lipgloss.Color(flavor.Mantle().Hex)
	colorSurface0 = lipgloss.Color(flavor.Surface0().Hex)
	colorSurface1 = lipgloss.Color(flavor.Surface1().Hex)
	colorText     = lipgloss.Color(flavor.Text().Hex)
	colorSubtext0 = lipgloss.Color(flavor.Subtext0().Hex)
	colorBlue     = lipgloss.Color(flavor.Blue().Hex)
	colorGreen    = lipgloss.Color(flavor.Green().Hex)
	colorRed      = lipgloss.Color(flavor.Red().Hex)
	colorYellow   = lipgloss.Color(flavor.Yellow().Hex)
	colorPeach    = lipgloss.Color(flavor.Peach().Hex)
	colorMauve    = lipgloss.Color(flavor.Mauve().Hex)
	colorTeal     = lipgloss.Color(flavor.Teal().Hex)
	colorOverlay0 = lipgloss.Color(flavor.Overlay0().Hex)
)

// Tab bar styles.
var (
	// ActiveTabStyle is used for the current tab.
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorBlue).
			Padding(0, 1).
			Bold(true)

	// InactiveTabStyle is used for the other tabs.
	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorSurface0).
				Padding(0, 1)

	// TabBarStyle is the background strip for the tab bar row.
	TabBarStyle = lipgloss.NewStyle().
			Background(colorSurface0)
)

// List styles.
var (
	// TitleStyle renders the application header.
	TitleStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Bold(true)

	// CursorStyle highlights the row under the cursor.
	CursorStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Background(colorSurface1).
			Bold(true)

	// SelectedStyle is used for checked boxes.
	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// DetailStyle dims descriptions next to item names.
	DetailStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0)

	// DefaultMarkStyle marks the active output style or status line.
	DefaultMarkStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	// EmptyStyle is used when a tab has nothing to list.
	EmptyStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0).
			Italic(true)
)

// statusStyles color the per-item status column.
var statusStyles = map[string]lipgloss.Style{
	"new":           lipgloss.NewStyle().Foreground(colorGreen),
	"modified":      lipgloss.NewStyle().Foreground(colorPeach),
	"installed":     lipgloss.NewStyle().Foreground(colorOverlay0),
	"managed":       lipgloss.NewStyle().Foreground(colorTeal),
	"not installed": lipgloss.NewStyle().Foreground(colorSubtext0),
}

func statusStyle(s string) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return lipgloss.NewStyle().Foreground(colorText)
}

// Status bar styles.
var (
	// StatusBarStyle is the base style for the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorSurface0).
			Padding(0, 1)

	// StatusBarKeyStyle highlights keyboard shortcuts in the status bar.
	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Background(colorSurface0).
				Bold(true)

	// MessageStyle renders the one-line status message above the bar.
	MessageStyle = lipgloss.NewStyle().
			Foreground(colorPeach)
)

// Overlay styles.
var (
	// OverlayStyle is the border and background for modal dialogs.
	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Background(colorMantle).
			Foreground(colorText).
			Padding(1, 2)

	// OverlayTitleStyle is used for the dialog title.
	OverlayTitleStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	// HintStyle is used for dim key hints.
	HintStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0)
)

// Diff line styles.
var (
	diffAddStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	diffRemoveStyle = lipgloss.NewStyle().Foreground(colorRed)
	diffHunkStyle   = lipgloss.NewStyle().Foreground(colorMauve)
	diffHeaderStyle = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
)

// logStyles color the marker of processing log lines.
var logStyles = map[app.LogLevel]lipgloss.Style{
	app.LogOK:   lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	app.LogErr:  lipgloss.NewStyle().Foreground(colorRed).Bold(true),
	app.LogSkip: lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	app.LogInfo: lipgloss.NewStyle().Foreground(colorBlue),
}
