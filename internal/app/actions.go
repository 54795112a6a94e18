package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/mcp"
	"github.com/ruminaider/claude-installer/internal/paths"
)

// NextTab moves to the following tab, wrapping around.
func (a *App) NextTab() { a.SetTab(tabCycle(a.tab, 1)) }

// PrevTab moves to the preceding tab, wrapping around.
func (a *App) PrevTab() { a.SetTab(tabCycle(a.tab, -1)) }

// SetTab switches to t when the list view is active.
func (a *App) SetTab(t Tab) {
	if a.view != ViewList || t < 0 || int(t) >= len(Tabs()) {
		return
	}
	a.tab = t
	a.clampCursor(t)
}

// CursorDown moves the cursor one row down.
func (a *App) CursorDown() {
	a.cursor[a.tab]++
	a.clampCursor(a.tab)
}

// CursorUp moves the cursor one row up.
func (a *App) CursorUp() {
	a.cursor[a.tab]--
	a.clampCursor(a.tab)
}

// ToggleSelected flips selection of the item under the cursor.
func (a *App) ToggleSelected() {
	i := a.cursor[a.tab]
	switch a.tab {
	case TabMCP:
		if i < len(a.mcp) {
			a.mcp[i].Selected = !a.mcp[i].Selected
		}
	case TabPlugins:
		if i < len(a.plugins) {
			a.plugins[i].Selected = !a.plugins[i].Selected
		}
	default:
		idx := a.componentIndexes(a.tab)
		if i < len(idx) {
			a.components[idx[i]].Selected = !a.components[idx[i]].Selected
		}
	}
}

// SelectAll selects every item on the current tab.
func (a *App) SelectAll() { a.setAll(true) }

// SelectNone clears selection on the current tab.
func (a *App) SelectNone() { a.setAll(false) }

func (a *App) setAll(v bool) {
	switch a.tab {
	case TabMCP:
		for i := range a.mcp {
			a.mcp[i].Selected = v
		}
	case TabPlugins:
		for i := range a.plugins {
			a.plugins[i].Selected = v
		}
	default:
		for _, i := range a.componentIndexes(a.tab) {
			a.components[i].Selected = v
		}
	}
}

// currentComponent returns the component under the cursor.
func (a *App) currentComponent() (component.Component, bool) {
	idx := a.componentIndexes(a.tab)
	i := a.cursor[a.tab]
	if i >= len(idx) {
		return component.Component{}, false
	}
	return a.components[idx[i]], true
}

// Install queues every selected item of the current tab for installation.
func (a *App) Install() { a.begin(ActionInstall) }

// Remove queues every selected item of the current tab for removal.
func (a *App) Remove() { a.begin(ActionRemove) }

// begin snapshots the selection into a new run. Local-scope MCP operations
// without a project path first collect one, and MCP installs with missing
// environment values collect those before anything is queued.
func (a *App) begin(action Action) {
	if a.view != ViewList {
		return
	}
	items := a.selectedItems(action)
	if len(items) == 0 {
		a.status = "Nothing selected"
		return
	}

	if a.tab == TabMCP && a.needsProjectPath() {
		a.pending = &action
		a.view = ViewProjectPath
		a.status = ""
		return
	}

	if action == ActionInstall && a.tab == TabMCP {
		prompts := a.resolveEnv(items)
		if len(prompts) > 0 {
			a.pending = &action
			a.staged = items
			a.envPrompts = prompts
			a.envIndex = 0
			a.view = ViewEnvInput
			return
		}
	}
	a.startQueue(items)
}

func (a *App) needsProjectPath() bool {
	return a.Target().SupportsScope() && a.scope == cli.ScopeLocal && strings.TrimSpace(a.projectPath) == ""
}

func (a *App) selectedItems(action Action) []queueItem {
	var items []queueItem
	switch a.tab {
	case TabMCP:
		for i := range a.mcp {
			if a.mcp[i].Selected {
				items = append(items, queueItem{action: action, mcp: &a.mcp[i]})
			}
		}
	case TabPlugins:
		for i := range a.plugins {
			if a.plugins[i].Selected {
				items = append(items, queueItem{action: action, plugin: &a.plugins[i]})
			}
		}
	default:
		for _, i := range a.componentIndexes(a.tab) {
			if a.components[i].Selected {
				c := a.components[i]
				items = append(items, queueItem{action: action, component: &c})
			}
		}
	}
	// Copy MCP and plugin items so a refresh replacing the collections does
	// not alias queued entries.
	for i := range items {
		if items[i].mcp != nil {
			m := *items[i].mcp
			items[i].mcp = &m
		}
		if items[i].plugin != nil {
			p := *items[i].plugin
			items[i].plugin = &p
		}
	}
	return items
}

// envPrompt is one environment value to collect for a staged MCP install.
type envPrompt struct {
	item int // index into staged
	key  string
}

// EnvPrompt describes the value currently being asked for.
type EnvPrompt struct {
	Server string
	Key    string
	Index  int
	Total  int
}

// resolveEnv fills known environment values into items and returns prompts
// for the rest.
func (a *App) resolveEnv(items []queueItem) []envPrompt {
	var prompts []envPrompt
	for i := range items {
		if items[i].mcp == nil || items[i].mcp.Installed {
			continue
		}
		resolved, missing := mcp.ResolveEnv(items[i].mcp.Server, a.cfg.EnvDefaults, a.cfg.LookupEnv)
		items[i].env = resolved
		for _, key := range missing {
			prompts = append(prompts, envPrompt{item: i, key: key})
		}
	}
	return prompts
}

// CurrentEnvPrompt returns the value being collected in the env input view.
func (a *App) CurrentEnvPrompt() (EnvPrompt, bool) {
	if a.view != ViewEnvInput || a.envIndex >= len(a.envPrompts) {
		return EnvPrompt{}, false
	}
	p := a.envPrompts[a.envIndex]
	return EnvPrompt{
		Server: a.staged[p.item].mcp.Server.Name,
		Key:    p.key,
		Index:  a.envIndex + 1,
		Total:  len(a.envPrompts),
	}, true
}

// SubmitEnvValue records the value for the current prompt and advances. An
// empty value omits the variable. After the last prompt the run starts.
func (a *App) SubmitEnvValue(value string) {
	if a.view != ViewEnvInput || a.envIndex >= len(a.envPrompts) {
		return
	}
	p := a.envPrompts[a.envIndex]
	if value = strings.TrimSpace(value); value != "" {
		a.staged[p.item].env = append(a.staged[p.item].env, mcp.EnvValue{Key: p.key, Value: value})
	}
	a.envIndex++
	if a.envIndex < len(a.envPrompts) {
		return
	}
	items := a.staged
	a.clearPending()
	a.view = ViewList
	a.startQueue(items)
}

// CancelEnvInput abandons the staged install.
func (a *App) CancelEnvInput() {
	if a.view != ViewEnvInput {
		return
	}
	a.clearPending()
	a.view = ViewList
	a.status = "Install cancelled"
}

// SubmitProjectPath sets the local-scope project directory and resumes the
// pending action. The path must be an existing directory.
func (a *App) SubmitProjectPath(path string) error {
	if a.view != ViewProjectPath {
		return nil
	}
	path = paths.Expand(strings.TrimSpace(path))
	if path == "" {
		a.status = "Project path is required for local scope"
		return cli.ErrProjectPathRequired
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		a.status = fmt.Sprintf("Not a directory: %s", path)
		return fmt.Errorf("project path %s: not a directory", path)
	}
	a.projectPath = path
	a.view = ViewList
	a.refreshLocalMCP()
	action := ActionInstall
	if a.pending != nil {
		action = *a.pending
	}
	a.clearPending()
	a.logger.Info("project path set", slog.String("path", path))
	a.begin(action)
	return nil
}

// refreshLocalMCP re-reads which MCP servers are registered for the
// project so the pending action does not run on user-scope status.
func (a *App) refreshLocalMCP() {
	if a.cfg.Orchestrator == nil || len(a.mcp) == 0 {
		return
	}
	installed, err := a.cfg.Orchestrator.InstalledMCP(a.ctx, a.scope, a.projectPath)
	if err != nil {
		a.logger.Warn("MCP status unavailable", slog.String("path", a.projectPath), slog.String("error", err.Error()))
		a.status = fmt.Sprintf("MCP status unavailable: %v", err)
		return
	}
	for i := range a.mcp {
		a.mcp[i].Installed = installed[a.mcp[i].Server.Name]
	}
}

// CancelProjectPath abandons the pending action and falls back to user
// scope.
func (a *App) CancelProjectPath() {
	if a.view != ViewProjectPath {
		return
	}
	a.clearPending()
	a.scope = cli.ScopeUser
	a.view = ViewList
	a.status = "Scope reset to user"
}

func (a *App) clearPending() {
	a.pending = nil
	a.staged = nil
	a.envPrompts = nil
	a.envIndex = 0
}

// ToggleScope switches MCP registrations between user and local scope and
// refreshes installed status for the new scope.
func (a *App) ToggleScope() {
	if a.view != ViewList || a.tab != TabMCP {
		return
	}
	if !a.Target().SupportsScope() {
		a.status = fmt.Sprintf("%s has no MCP scopes", a.Target().Title())
		return
	}
	a.scope = a.scope.Toggle()
	a.status = "MCP scope: " + a.scope.String()
	if a.scope == cli.ScopeUser || a.projectPath != "" {
		if !a.needsRefresh {
			a.mcpOnlyRefresh = true
		}
		a.needsRefresh = true
	}
}

// SetDefault makes the component under the cursor the active output style
// or status line.
func (a *App) SetDefault() {
	if a.view != ViewList || !a.tab.HasDefault() || a.cfg.Installer == nil {
		return
	}
	c, ok := a.currentComponent()
	if !ok {
		return
	}
	if !c.Installed() {
		a.status = fmt.Sprintf("Install %s before making it the default", c.Name)
		return
	}
	if err := a.cfg.Installer.SetDefault(c); err != nil {
		a.status = "Error: " + err.Error()
		a.logger.Warn("set default failed", slog.String("component", c.DisplayName()), slog.String("error", err.Error()))
		return
	}
	if doc, err := claudecode.ReadSettingsFile(a.cfg.Installer.Layout().SettingsPath()); err == nil {
		a.settings = doc
	}
	a.status = fmt.Sprintf("Default %s set to %s", strings.ToLower(a.tab.Title()), c.Name)
	a.logger.Info("default set", slog.String("component", c.DisplayName()))
}

// ShowDiff opens the diff view for the item under the cursor. MCP servers
// and plugins show their catalog entry instead.
func (a *App) ShowDiff() {
	if a.view != ViewList {
		return
	}
	i := a.cursor[a.tab]
	var lines []string
	switch a.tab {
	case TabMCP:
		if i >= len(a.mcp) {
			return
		}
		s := a.mcp[i].Server
		a.diffTitle = "MCP: " + s.Name
		lines = []string{"name: " + s.Name, "type: " + s.Type}
		if s.IsHTTP() {
			lines = append(lines, "url: "+s.URL)
		} else {
			lines = append(lines, "command: "+s.Command)
		}
		if len(s.Env) > 0 {
			lines = append(lines, "env: "+strings.Join(s.Env, ", "))
		}
		if s.Description != "" {
			lines = append(lines, "", s.Description)
		}
	case TabPlugins:
		if i >= len(a.plugins) {
			return
		}
		p := a.plugins[i].Plugin
		a.diffTitle = "Plugin: " + p.Key()
		lines = []string{"name: " + p.Name, "marketplace: " + p.Marketplace, "source: " + p.Source}
		if p.Comment != "" {
			lines = append(lines, "", p.Comment)
		}
	default:
		c, ok := a.currentComponent()
		if !ok {
			return
		}
		a.diffTitle = c.DisplayName()
		layout := component.Layout{}
		if a.cfg.Installer != nil {
			layout = a.cfg.Installer.Layout()
		}
		out, err := component.Diff(c, layout)
		switch {
		case err != nil:
			lines = []string{"Error: " + err.Error()}
		case out == "":
			lines = []string{"No differences"}
		default:
			lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
		}
	}
	a.diffLines = lines
	a.diffScroll = 0
	a.view = ViewDiff
}

// ScrollDiff moves the diff view by delta lines.
func (a *App) ScrollDiff(delta int) {
	if a.view != ViewDiff {
		return
	}
	a.diffScroll += delta
	if last := len(a.diffLines) - 1; a.diffScroll > last {
		a.diffScroll = last
	}
	if a.diffScroll < 0 {
		a.diffScroll = 0
	}
}

// CloseDiff returns to the list view.
func (a *App) CloseDiff() {
	if a.view == ViewDiff {
		a.view = ViewList
		a.diffLines = nil
	}
}

// CloseInstalling returns to the list once processing has completed.
func (a *App) CloseInstalling() {
	if a.view == ViewInstalling && a.complete {
		a.view = ViewList
	}
}

// RequestQuit exits now, or once the queue drains when processing.
func (a *App) RequestQuit() {
	if a.view == ViewInstalling && len(a.queue) > 0 {
		a.quitRequested = true
		a.status = "Quitting after the current run"
		return
	}
	a.quit = true
}
