package main

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"

	"github.com/ruminaider/claude-installer/internal/app"
	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/installer"
	"github.com/ruminaider/claude-installer/internal/marketplace"
	"github.com/ruminaider/claude-installer/internal/mcp"
	"github.com/ruminaider/claude-installer/internal/merge"
)

func TestRenderStatus(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	layout := component.Layout{Source: t.TempDir(), Dest: t.TempDir()}
	snap := app.Snapshot{
		Components: []component.Component{
			{Kind: component.Agents, Name: "reviewer.md", Status: component.New},
			{Kind: component.OutputStyles, Name: "terse.md", Status: component.Unchanged},
		},
		MCP:      []app.MCPItem{{Server: mcp.Server{Name: "context7", Category: "docs"}, Installed: true}},
		Plugins:  []app.PluginItem{{Plugin: marketplace.Plugin{Name: "superpowers", Marketplace: "obra"}}},
		Settings: merge.Document{"outputStyle": "terse"},
		Revision: "abc1234",
	}

	var buf bytes.Buffer
	renderStatus(&buf, cli.Claude, installer.New(layout, nil), snap)
	out := buf.String()

	assert.Contains(t, out, "reviewer.md")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "context7")
	assert.Contains(t, out, "superpowers@obra")
	assert.Contains(t, out, "not installed")
	assert.Contains(t, out, "Pending: 1 component(s) new or modified for Claude Code (source abc1234)")
}

func TestRenderStatus_Empty(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var buf bytes.Buffer
	renderStatus(&buf, cli.Codex, nil, app.Snapshot{})
	assert.Contains(t, buf.String(), "Nothing to install")
}
