package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
)

const testMCPCatalog = `servers:
  context7:
    description: Library docs
    command: npx -y @upstash/context7-mcp
  remote:
    url: https://mcp.example.com
`

const testPluginCatalog = `marketplaces:
  superpowers-marketplace:
    source: https://github.com/obra/superpowers-marketplace
    plugins:
      - superpowers
`

func newBundle(t *testing.T) component.Layout {
	t.Helper()
	root := t.TempDir()
	l := component.Layout{Source: filepath.Join(root, "src"), Dest: filepath.Join(root, "dest")}
	writeFile(t, filepath.Join(l.Source, "agents", "reviewer.md"), "---\ndescription: Reviews code\n---\n")
	writeFile(t, filepath.Join(l.Source, "mcps", "mcps.yaml"), testMCPCatalog)
	writeFile(t, filepath.Join(l.Source, "plugins", "plugins.yaml"), testPluginCatalog)
	return l
}

func TestSourceLoad(t *testing.T) {
	l := newBundle(t)
	runner := newRecordingRunner()
	runner.stdout["claude mcp list"] = "Checking MCP server health...\n\ncontext7: npx -y @upstash/context7-mcp - ✓ Connected\n"
	src := Source{
		Layout:       l,
		Orchestrator: cli.New(cli.Claude, runner, cli.WithGOOS("linux"), cli.WithClaudeDir(filepath.Join(t.TempDir(), "claude"))),
	}

	snap, err := src.Load(context.Background(), cli.ScopeUser, "")
	require.NoError(t, err)

	require.Len(t, snap.Components, 1)
	assert.Equal(t, "agents/reviewer.md", snap.Components[0].Key())
	assert.Equal(t, component.New, snap.Components[0].Status)

	require.Len(t, snap.MCP, 2)
	assert.Equal(t, "context7", snap.MCP[0].Server.Name)
	assert.True(t, snap.MCP[0].Installed)
	assert.False(t, snap.MCP[1].Installed)
	assert.False(t, snap.MCP[0].Selected)

	require.Len(t, snap.Plugins, 1)
	assert.Equal(t, "superpowers@superpowers-marketplace", snap.Plugins[0].Plugin.Key())
	assert.False(t, snap.Plugins[0].Installed)
	assert.Empty(t, snap.Warnings)
	assert.NotNil(t, snap.Settings)
}

func TestSourceLoad_StatusFailureIsAWarning(t *testing.T) {
	l := newBundle(t)
	runner := newRecordingRunner()
	runner.failing["codex plugin list"] = "unknown command"
	src := Source{
		Layout:       l,
		Orchestrator: cli.New(cli.Codex, runner, cli.WithGOOS("linux"), cli.WithCodexDir(t.TempDir())),
	}

	snap, err := src.Load(context.Background(), cli.ScopeUser, "")
	require.NoError(t, err)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "plugin status unavailable")
	require.Len(t, snap.Plugins, 1)
	assert.False(t, snap.Plugins[0].Installed)
}

func TestSourceLoad_MissingSourceFails(t *testing.T) {
	src := Source{Layout: component.Layout{Source: filepath.Join(t.TempDir(), "nope"), Dest: t.TempDir()}}
	_, err := src.Load(context.Background(), cli.ScopeUser, "")
	assert.Error(t, err)
}

func TestNew_SurfacesSnapshotWarnings(t *testing.T) {
	a := New(context.Background(), Config{}, Snapshot{Warnings: []string{"MCP status unavailable: boom"}})
	assert.Equal(t, "MCP status unavailable: boom", a.Status())
	assert.Equal(t, ViewList, a.View())
}
