package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/installer"
	"github.com/ruminaider/claude-installer/internal/mcp"
)

// queueItem is one pending operation. Exactly one of component, mcp and
// plugin is set.
type queueItem struct {
	action    Action
	component *component.Component
	mcp       *MCPItem
	plugin    *PluginItem
	env       []mcp.EnvValue
}

func (q queueItem) name() string {
	switch {
	case q.component != nil:
		return q.component.DisplayName()
	case q.mcp != nil:
		return "mcp/" + q.mcp.Server.Name
	case q.plugin != nil:
		return "plugin/" + q.plugin.Plugin.Key()
	default:
		return "?"
	}
}

// errSkip marks a queue entry that needed no work.
type errSkip struct{ reason string }

func (e errSkip) Error() string { return e.reason }

func skip(reason string) error { return errSkip{reason: reason} }

// startQueue enters the installing view with items as a fresh run.
func (a *App) startQueue(items []queueItem) {
	a.queue = items
	a.total = len(items)
	a.done = 0
	a.log = nil
	a.complete = false
	a.quitRequested = false
	a.view = ViewInstalling
	a.status = ""
	if a.refreshing {
		a.staleRefresh = true
	}
	a.logger.Info("run started", slog.Int("items", len(items)), slog.String("tab", a.tab.Title()))
}

// ProcessStep executes the head of the queue and logs its outcome. It
// returns false when the queue is empty.
func (a *App) ProcessStep() bool {
	if len(a.queue) == 0 {
		return false
	}
	item := a.queue[0]
	a.queue = a.queue[1:]
	a.done++

	name := item.name()
	err := a.execute(item)
	var s errSkip
	switch {
	case err == nil:
		a.appendLog(LogOK, fmt.Sprintf("%sed %s", pastStem(item.action), name))
		a.logger.Info("item processed", slog.String("item", name), slog.String("action", item.action.String()))
	case errors.As(err, &s):
		a.appendLog(LogSkip, fmt.Sprintf("%s: %s", name, s.reason))
		a.logger.Info("item skipped", slog.String("item", name), slog.String("reason", s.reason))
	default:
		a.appendLog(LogErr, fmt.Sprintf("%s: %v", name, err))
		a.logger.Error("item failed", slog.String("item", name), slog.String("action", item.action.String()), slog.String("error", err.Error()))
	}

	if len(a.queue) == 0 {
		a.needsRefresh = true
		a.mcpOnlyRefresh = false
	}
	return true
}

func pastStem(a Action) string {
	if a == ActionRemove {
		return "Remov"
	}
	return "Install"
}

func (a *App) execute(item queueItem) error {
	switch {
	case item.component != nil:
		return a.executeComponent(item.action, *item.component)
	case item.mcp != nil:
		return a.executeMCP(item.action, *item.mcp, item.env)
	case item.plugin != nil:
		return a.executePlugin(item.action, *item.plugin)
	default:
		return errors.New("empty queue entry")
	}
}

func (a *App) executeComponent(action Action, c component.Component) error {
	if a.cfg.Installer == nil {
		return errors.New("no installer configured")
	}
	if action == ActionInstall {
		switch c.Status {
		case component.Unchanged:
			return skip("already up to date")
		case component.Managed:
			return skip("already registered")
		}
		return a.cfg.Installer.Install(c)
	}
	if !c.Installed() {
		return skip("not installed")
	}
	err := a.cfg.Installer.Remove(c)
	if errors.Is(err, installer.ErrNotRemovable) {
		return skip(err.Error())
	}
	return err
}

func (a *App) executeMCP(action Action, item MCPItem, env []mcp.EnvValue) error {
	if a.cfg.Orchestrator == nil {
		return errors.New("no target CLI configured")
	}
	if action == ActionInstall {
		if item.Installed {
			return skip("already installed")
		}
		return a.cfg.Orchestrator.InstallMCP(a.ctx, item.Server, a.scope, a.projectPath, env)
	}
	if !item.Installed {
		return skip("not installed")
	}
	return a.cfg.Orchestrator.RemoveMCP(a.ctx, item.Server, a.scope, a.projectPath)
}

func (a *App) executePlugin(action Action, item PluginItem) error {
	if a.cfg.Orchestrator == nil {
		return errors.New("no target CLI configured")
	}
	if action == ActionInstall {
		if item.Installed {
			return skip("already installed")
		}
		return a.cfg.Orchestrator.InstallPlugin(a.ctx, item.Plugin)
	}
	if !item.Installed {
		return skip("not installed")
	}
	return a.cfg.Orchestrator.RemovePlugin(a.ctx, item.Plugin)
}

// Tick advances the state machine by one interval: it processes one queue
// entry, starts a pending refresh, or collects a finished one.
func (a *App) Tick() {
	if a.ProcessStep() {
		return
	}
	if a.quitRequested {
		a.quit = true
		return
	}

	if a.needsRefresh && !a.refreshing {
		a.startRefresh()
		return
	}

	if a.refreshing {
		snap, ok, err := a.refresh.Poll()
		if ok {
			a.finishRefresh(snap, err)
		}
	}
}

func (a *App) startRefresh() {
	if a.cfg.Load == nil {
		a.needsRefresh = false
		a.complete = true
		return
	}
	ctx, load := a.ctx, a.cfg.Load
	scope, project := a.scope, a.projectPath
	err := a.refresh.Start(func() (Snapshot, error) {
		return load(ctx, scope, project)
	})
	if err != nil {
		// The previous result is uncollected; poll it and retry next tick.
		a.refreshing = true
		return
	}
	a.needsRefresh = false
	a.refreshing = true
	a.inflightMCPOnly = a.mcpOnlyRefresh
	a.mcpOnlyRefresh = false
	a.logger.Debug("refresh started", slog.String("scope", scope.String()), slog.Bool("mcp_only", a.inflightMCPOnly))
}

func (a *App) finishRefresh(snap Snapshot, err error) {
	a.refreshing = false
	if a.staleRefresh {
		a.staleRefresh = false
		a.logger.Debug("discarding refresh started before the run")
		return
	}
	a.complete = true
	if err != nil {
		msg := fmt.Sprintf("refresh failed: %v", err)
		a.appendLog(LogErr, msg)
		a.status = "Error: " + msg
		a.logger.Error("refresh failed", slog.String("error", err.Error()))
		if a.view == ViewInstalling {
			a.view = ViewList
		}
		return
	}
	if a.inflightMCPOnly {
		a.applyMCP(snap)
	} else {
		a.apply(snap)
	}
	for _, w := range snap.Warnings {
		a.status = w
	}
	a.logger.Info("refresh applied")
}
