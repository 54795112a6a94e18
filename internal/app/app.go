// Package app is the interactive installer's state machine. It owns the
// component, MCP and plugin collections, the current view and selection, the
// processing queue and the background refresh. Rendering and key decoding
// live in the TUI, which drives App through its methods and Tick.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/installer"
	"github.com/ruminaider/claude-installer/internal/merge"
)

// MaxLogLines bounds the processing log.
const MaxLogLines = 200

// LogLevel marks the outcome of one processing step.
type LogLevel int

const (
	LogOK LogLevel = iota
	LogErr
	LogSkip
	LogInfo
)

func (l LogLevel) String() string {
	switch l {
	case LogOK:
		return "OK"
	case LogErr:
		return "ERR"
	case LogSkip:
		return "SKIP"
	default:
		return "INFO"
	}
}

// LogEntry is one line of the processing log.
type LogEntry struct {
	Level   LogLevel
	Message string
}

// Action is what a queue entry does to its item.
type Action int

const (
	ActionInstall Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "install"
}

// Config wires an App to its collaborators.
type Config struct {
	Load         LoadFunc
	Installer    *installer.Installer
	Orchestrator *cli.Orchestrator
	// EnvDefaults supplies MCP environment values before the process
	// environment is consulted.
	EnvDefaults map[string]string
	LookupEnv   func(string) (string, bool)
	Scope       cli.Scope
	ProjectPath string
	Logger      *slog.Logger
}

// App is the installer state machine. It is not safe for concurrent use;
// only the background refresh runs off the caller's goroutine, and its
// result is handed over through a Handoff.
type App struct {
	ctx    context.Context
	cfg    Config
	logger *slog.Logger

	view   View
	tab    Tab
	cursor map[Tab]int

	components []component.Component
	mcp        []MCPItem
	plugins    []PluginItem
	settings   merge.Document
	revision   string

	scope       cli.Scope
	projectPath string

	// pending holds an action waiting for a project path or env values.
	pending    *Action
	staged     []queueItem
	envPrompts []envPrompt
	envIndex   int

	queue    []queueItem
	total    int
	done     int
	log      []LogEntry
	complete bool

	needsRefresh bool
	refreshing   bool
	refresh      Handoff[Snapshot]
	// mcpOnlyRefresh limits the pending refresh to MCP status; inflightMCPOnly
	// is the same for the running one. staleRefresh drops a result started
	// before the current run.
	mcpOnlyRefresh  bool
	inflightMCPOnly bool
	staleRefresh    bool

	diffTitle  string
	diffLines  []string
	diffScroll int

	status        string
	quitRequested bool
	quit          bool
}

// New builds an App from an initial snapshot.
func New(ctx context.Context, cfg Config, snap Snapshot) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	a := &App{
		ctx:         ctx,
		cfg:         cfg,
		logger:      cfg.Logger,
		cursor:      map[Tab]int{},
		scope:       cfg.Scope,
		projectPath: cfg.ProjectPath,
	}
	if a.cfg.Orchestrator != nil && !a.cfg.Orchestrator.Target().SupportsScope() {
		a.scope = cli.ScopeUser
	}
	a.apply(snap)
	for _, w := range snap.Warnings {
		a.status = w
	}
	return a
}

// apply replaces every collection with the snapshot contents.
func (a *App) apply(snap Snapshot) {
	a.components = snap.Components
	a.mcp = keepMCPSelection(a.mcp, snap.MCP)
	a.plugins = snap.Plugins
	a.settings = snap.Settings
	if a.settings == nil {
		a.settings = merge.Document{}
	}
	if snap.Revision != "" {
		a.revision = snap.Revision
	}
	for _, t := range Tabs() {
		a.clampCursor(t)
	}
}

// applyMCP replaces only the MCP collection, keeping selection by server
// name.
func (a *App) applyMCP(snap Snapshot) {
	a.mcp = keepMCPSelection(a.mcp, snap.MCP)
	a.clampCursor(TabMCP)
}

func keepMCPSelection(prev, next []MCPItem) []MCPItem {
	if len(prev) == 0 {
		return next
	}
	selected := make(map[string]bool, len(prev))
	for _, m := range prev {
		selected[m.Server.Name] = m.Selected
	}
	for i := range next {
		if v, ok := selected[next[i].Server.Name]; ok {
			next[i].Selected = v
		}
	}
	return next
}

// View returns the current view.
func (a *App) View() View { return a.view }

// Tab returns the current tab.
func (a *App) Tab() Tab { return a.tab }

// Cursor returns the cursor row on the current tab.
func (a *App) Cursor() int { return a.cursor[a.tab] }

// Scope returns the MCP scope.
func (a *App) Scope() cli.Scope { return a.scope }

// ProjectPath returns the project directory used for local scope.
func (a *App) ProjectPath() string { return a.projectPath }

// Target returns the configured target CLI.
func (a *App) Target() cli.Target {
	if a.cfg.Orchestrator == nil {
		return cli.Claude
	}
	return a.cfg.Orchestrator.Target()
}

// Revision is the short source bundle revision, if known.
func (a *App) Revision() string { return a.revision }

// Status is the latest one-line status message.
func (a *App) Status() string { return a.status }

// Log returns the processing log.
func (a *App) Log() []LogEntry { return a.log }

// Progress returns processed and total queue entries of the current run.
func (a *App) Progress() (done, total int) { return a.done, a.total }

// Complete reports whether processing and the follow-up refresh finished.
func (a *App) Complete() bool { return a.complete }

// Refreshing reports whether a background refresh is in flight.
func (a *App) Refreshing() bool { return a.refreshing }

// ShouldQuit reports whether the application should exit.
func (a *App) ShouldQuit() bool { return a.quit }

// QuitPending reports whether a quit waits for the queue to drain.
func (a *App) QuitPending() bool { return a.quitRequested && !a.quit }

// DiffTitle returns the heading of the diff view.
func (a *App) DiffTitle() string { return a.diffTitle }

// DiffLines returns the diff view content.
func (a *App) DiffLines() []string { return a.diffLines }

// DiffScroll returns the first visible diff line.
func (a *App) DiffScroll() int { return a.diffScroll }

// Components returns every scanned component.
func (a *App) Components() []component.Component { return a.components }

// MCPItems returns the MCP collection.
func (a *App) MCPItems() []MCPItem { return a.mcp }

// PluginItems returns the plugin collection.
func (a *App) PluginItems() []PluginItem { return a.plugins }

// Row is the display projection of one list item.
type Row struct {
	Name      string
	Detail    string
	Status    string
	Selected  bool
	Installed bool
	Default   bool
}

// Rows projects the current tab.
func (a *App) Rows() []Row {
	return a.rowsFor(a.tab)
}

func (a *App) rowsFor(t Tab) []Row {
	switch t {
	case TabMCP:
		rows := make([]Row, 0, len(a.mcp))
		for _, m := range a.mcp {
			detail := m.Server.Description
			if detail == "" {
				detail = m.Server.Command
				if m.Server.IsHTTP() {
					detail = m.Server.URL
				}
			}
			rows = append(rows, Row{
				Name:      m.Server.Name,
				Detail:    detail,
				Status:    installedLabel(m.Installed),
				Selected:  m.Selected,
				Installed: m.Installed,
			})
		}
		return rows
	case TabPlugins:
		rows := make([]Row, 0, len(a.plugins))
		for _, p := range a.plugins {
			detail := p.Plugin.Comment
			if detail == "" {
				detail = p.Plugin.ShortRepo()
			}
			rows = append(rows, Row{
				Name:      p.Plugin.Name,
				Detail:    detail,
				Status:    installedLabel(p.Installed),
				Selected:  p.Selected,
				Installed: p.Installed,
			})
		}
		return rows
	default:
		var rows []Row
		for _, i := range a.componentIndexes(t) {
			c := a.components[i]
			rows = append(rows, Row{
				Name:      c.Name,
				Detail:    c.Description,
				Status:    c.Status.String(),
				Selected:  c.Selected,
				Installed: c.Installed(),
				Default:   a.isDefault(c),
			})
		}
		return rows
	}
}

func installedLabel(installed bool) string {
	if installed {
		return "installed"
	}
	return "not installed"
}

// TabCounts returns the selected and total items on t.
func (a *App) TabCounts(t Tab) (selected, total int) {
	for _, r := range a.rowsFor(t) {
		total++
		if r.Selected {
			selected++
		}
	}
	return selected, total
}

func (a *App) isDefault(c component.Component) bool {
	if a.cfg.Installer == nil || !c.Installed() {
		return false
	}
	return a.cfg.Installer.IsDefault(c, a.settings)
}

// componentIndexes returns indexes into a.components listed on t.
func (a *App) componentIndexes(t Tab) []int {
	kind, ok := t.Kind()
	if !ok {
		return nil
	}
	var idx []int
	for i, c := range a.components {
		if c.Kind == kind {
			idx = append(idx, i)
		}
	}
	return idx
}

func (a *App) tabLen(t Tab) int {
	switch t {
	case TabMCP:
		return len(a.mcp)
	case TabPlugins:
		return len(a.plugins)
	default:
		return len(a.componentIndexes(t))
	}
}

func (a *App) clampCursor(t Tab) {
	n := a.tabLen(t)
	switch {
	case n == 0:
		a.cursor[t] = 0
	case a.cursor[t] >= n:
		a.cursor[t] = n - 1
	case a.cursor[t] < 0:
		a.cursor[t] = 0
	}
}

func (a *App) appendLog(level LogLevel, msg string) {
	a.log = append(a.log, LogEntry{Level: level, Message: msg})
	if over := len(a.log) - MaxLogLines; over > 0 {
		a.log = append([]LogEntry(nil), a.log[over:]...)
	}
}
