// Package tui renders the installer's state machine with bubbletea. The
// model decodes keys into app.App calls and drives app.App.Tick on a fixed
// interval; all state lives in the app package.
package tui

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ruminaider/claude-installer/internal/app"
)

// TickInterval is how often the state machine advances and background
// results are polled.
const TickInterval = 100 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the root bubbletea model. It shows a loading screen until the
// initial snapshot arrives, then hands every interaction to app.App.
type Model struct {
	ctx    context.Context
	cfg    app.Config
	title  string
	loader *app.Handoff[app.Snapshot]

	app *app.App
	err error

	spinner   spinner.Model
	progress  progress.Model
	diff      viewport.Model
	diffKey   string
	prompt    Prompt
	promptKey string
	tabBar    TabBar
	statusBar StatusBar

	width, height int
	quitting      bool
}

// New starts loading the initial snapshot in the background and returns the
// model that shows progress until it arrives.
func New(ctx context.Context, cfg app.Config, title string, load func() (app.Snapshot, error)) Model {
	loader := &app.Handoff[app.Snapshot]{}
	_ = loader.Start(load) // a fresh handoff is never busy

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = OverlayTitleStyle

	return Model{
		ctx:       ctx,
		cfg:       cfg,
		title:     title,
		loader:    loader,
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		diff:      viewport.New(80, 20),
		tabBar:    NewTabBar(),
		statusBar: NewStatusBar(),
		width:     80,
		height:    24,
	}
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error { return m.err }

// App returns the state machine once loading has finished.
func (m Model) App() *app.App { return m.app }

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update satisfies tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m.onTick()

	case tea.KeyMsg:
		if m.app == nil {
			if s := msg.String(); s == "ctrl+c" || s == "q" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m, cmd = m.onKey(msg)
		m.sync()
		if m.app.ShouldQuit() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) onTick() (tea.Model, tea.Cmd) {
	if m.app == nil {
		snap, ok, err := m.loader.Poll()
		if !ok {
			return m, tick()
		}
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		m.app = app.New(m.ctx, m.cfg, snap)
		m.layout()
		m.sync()
		return m, tick()
	}

	m.app.Tick()
	m.sync()
	if m.app.ShouldQuit() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, tick()
}

func (m Model) onKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.app.View() {
	case app.ViewDiff:
		return m.diffKeys(msg), nil
	case app.ViewEnvInput:
		return m.envKeys(msg)
	case app.ViewProjectPath:
		return m.projectKeys(msg)
	case app.ViewInstalling:
		switch msg.String() {
		case "q", "ctrl+c":
			m.app.RequestQuit()
		case "enter", "esc":
			m.app.CloseInstalling()
		}
		return m, nil
	default:
		return m.listKeys(msg), nil
	}
}

func (m Model) listKeys(msg tea.KeyMsg) Model {
	a := m.app
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		a.RequestQuit()
	case "up", "k":
		a.CursorUp()
	case "down", "j":
		a.CursorDown()
	case " ":
		a.ToggleSelected()
	case "a":
		a.SelectAll()
	case "n":
		a.SelectNone()
	case "d", "enter":
		a.ShowDiff()
	case "i":
		a.Install()
	case "r":
		a.Remove()
	case "s":
		a.SetDefault()
	case "o":
		a.ToggleScope()
	case "tab", "right", "l":
		a.NextTab()
	case "shift+tab", "left", "h":
		a.PrevTab()
	default:
		if tab, ok := tabForKey(key); ok {
			a.SetTab(tab)
		}
	}
	return m
}

func (m Model) diffKeys(msg tea.KeyMsg) Model {
	page := m.diff.Height
	if page < 1 {
		page = 1
	}
	switch msg.String() {
	case "q", "esc", "enter", "d":
		m.app.CloseDiff()
		return m
	case "down", "j":
		m.app.ScrollDiff(1)
	case "up", "k":
		m.app.ScrollDiff(-1)
	case "pgdown", " ", "ctrl+d":
		m.app.ScrollDiff(page)
	case "pgup", "ctrl+u":
		m.app.ScrollDiff(-page)
	case "home", "g":
		m.app.ScrollDiff(-m.app.DiffScroll())
	case "end", "G":
		m.app.ScrollDiff(len(m.app.DiffLines()))
	}
	// Keep the state machine's offset within what the viewport can show.
	m.diff.SetYOffset(m.app.DiffScroll())
	if over := m.app.DiffScroll() - m.diff.YOffset; over > 0 {
		m.app.ScrollDiff(-over)
	}
	return m
}

func (m Model) envKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.app.SubmitEnvValue(m.prompt.Value())
		return m, nil
	case "esc":
		m.app.CancelEnvInput()
		return m, nil
	case "ctrl+c":
		m.app.CancelEnvInput()
		m.app.RequestQuit()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) projectKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Failures stay in the view with the reason in the status line.
		_ = m.app.SubmitProjectPath(m.prompt.Value())
		return m, nil
	case "esc":
		m.app.CancelProjectPath()
		return m, nil
	case "ctrl+c":
		m.app.CancelProjectPath()
		m.app.RequestQuit()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// sync rebuilds derived widgets after the state machine changed.
func (m *Model) sync() {
	a := m.app
	if a == nil {
		return
	}
	m.tabBar.Sync(a)
	m.statusBar.Sync(a)

	switch a.View() {
	case app.ViewDiff:
		key := a.DiffTitle()
		if m.diffKey != key {
			m.diffKey = key
			m.diff.SetContent(renderDiff(a.DiffLines()))
		}
		m.diff.SetYOffset(a.DiffScroll())
	default:
		m.diffKey = ""
	}

	switch a.View() {
	case app.ViewEnvInput:
		p, ok := a.CurrentEnvPrompt()
		if !ok {
			return
		}
		key := "env:" + p.Server + ":" + p.Key + ":" + strconv.Itoa(p.Index)
		if m.promptKey != key {
			m.promptKey = key
			m.prompt = NewPrompt(
				"Environment for "+p.Server,
				envMessage(p),
				p.Key,
				isSecret(p.Key),
			)
			m.prompt.SetWidth(overlayWidth(m.width))
		}
	case app.ViewProjectPath:
		if m.promptKey != "project" {
			m.promptKey = "project"
			m.prompt = NewPrompt(
				"Project path",
				"Local scope registers MCP servers for one project.\nEnter its directory:",
				"~/code/my-project",
				false,
			)
			if wd, err := os.Getwd(); err == nil {
				m.prompt.SetValue(wd)
			}
			m.prompt.SetWidth(overlayWidth(m.width))
		}
	default:
		m.promptKey = ""
	}
}

// layout sizes child widgets for the current window.
func (m *Model) layout() {
	m.tabBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.diff.Width = m.width
	m.diff.Height = max(m.height-3, 1) // title, status message, status bar
	m.progress.Width = max(min(m.width-4, 60), 10)
	m.prompt.SetWidth(overlayWidth(m.width))
}

func isSecret(key string) bool {
	k := strings.ToUpper(key)
	for _, s := range []string{"KEY", "TOKEN", "SECRET", "PASSWORD"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
