package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/git"
	"github.com/ruminaider/claude-installer/internal/marketplace"
	"github.com/ruminaider/claude-installer/internal/mcp"
	"github.com/ruminaider/claude-installer/internal/merge"
)

// MCPItem is a catalog MCP server with its state in the target CLI.
type MCPItem struct {
	Server    mcp.Server
	Installed bool
	Selected  bool
}

// PluginItem is a catalog plugin with its state in the target CLI.
type PluginItem struct {
	Plugin    marketplace.Plugin
	Installed bool
	Selected  bool
}

// Snapshot is everything derived from disk and the target CLI in one scan.
type Snapshot struct {
	Components []component.Component
	MCP        []MCPItem
	Plugins    []PluginItem
	Settings   merge.Document
	Revision   string
	// Warnings are non-fatal problems, such as a target CLI that could not
	// be queried.
	Warnings []string
}

// LoadFunc produces a fresh Snapshot for the given MCP scope.
type LoadFunc func(ctx context.Context, scope cli.Scope, projectPath string) (Snapshot, error)

// Source describes where snapshots are loaded from.
type Source struct {
	Layout       component.Layout
	Orchestrator *cli.Orchestrator
	Logger       *slog.Logger
}

// MCPCatalogPath is mcps/mcps.yaml inside the bundle.
func (s Source) MCPCatalogPath() string {
	return filepath.Join(s.Layout.Source, "mcps", "mcps.yaml")
}

// EnvDefaultsPath is mcps/.env inside the bundle.
func (s Source) EnvDefaultsPath() string {
	return filepath.Join(s.Layout.Source, "mcps", ".env")
}

// PluginCatalogPath is plugins/plugins.yaml inside the bundle.
func (s Source) PluginCatalogPath() string {
	return filepath.Join(s.Layout.Source, "plugins", "plugins.yaml")
}

// Loader returns a LoadFunc reading from s.
func (s Source) Loader() LoadFunc {
	return func(ctx context.Context, scope cli.Scope, projectPath string) (Snapshot, error) {
		return s.Load(ctx, scope, projectPath)
	}
}

// Load scans the bundle and queries the target CLI concurrently. Catalog and
// scan failures are fatal; status queries that fail leave every entry
// marked as not installed and add a warning.
func (s Source) Load(ctx context.Context, scope cli.Scope, projectPath string) (Snapshot, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		snap          Snapshot
		servers       []mcp.Server
		plugins       []marketplace.Plugin
		mcpInstalled  map[string]bool
		plugInstalled map[string]bool
		mcpWarn       string
		plugWarn      string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comps, err := component.Scan(s.Layout, logger)
		if err != nil {
			return err
		}
		snap.Components = comps
		return nil
	})
	g.Go(func() error {
		doc, err := claudecode.ReadSettingsFile(s.Layout.SettingsPath())
		if err != nil {
			logger.Warn("reading settings", slog.String("error", err.Error()))
			doc = merge.Document{}
		}
		snap.Settings = doc
		return nil
	})
	g.Go(func() error {
		snap.Revision = git.ShortHead(s.Layout.Source)
		return nil
	})
	g.Go(func() error {
		var err error
		if servers, err = mcp.LoadCatalog(s.MCPCatalogPath()); err != nil {
			return err
		}
		if len(servers) == 0 || s.Orchestrator == nil {
			return nil
		}
		if mcpInstalled, err = s.Orchestrator.InstalledMCP(gctx, scope, projectPath); err != nil {
			mcpWarn = fmt.Sprintf("MCP status unavailable: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if plugins, err = marketplace.LoadCatalog(s.PluginCatalogPath()); err != nil {
			return err
		}
		if len(plugins) == 0 || s.Orchestrator == nil {
			return nil
		}
		if plugInstalled, err = s.Orchestrator.InstalledPlugins(gctx); err != nil {
			plugWarn = fmt.Sprintf("plugin status unavailable: %v", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	for _, srv := range servers {
		snap.MCP = append(snap.MCP, MCPItem{Server: srv, Installed: mcpInstalled[srv.Name]})
	}
	for _, p := range plugins {
		snap.Plugins = append(snap.Plugins, PluginItem{Plugin: p, Installed: cli.PluginInstalled(plugInstalled, p)})
	}
	for _, w := range []string{mcpWarn, plugWarn} {
		if w != "" {
			logger.Warn(w)
			snap.Warnings = append(snap.Warnings, w)
		}
	}
	logger.Info("snapshot loaded",
		slog.Int("components", len(snap.Components)),
		slog.Int("mcp", len(snap.MCP)),
		slog.Int("plugins", len(snap.Plugins)))
	return snap, nil
}
