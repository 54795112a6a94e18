package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ruminaider/claude-installer/internal/app"
	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/installer"
	"github.com/ruminaider/claude-installer/internal/merge"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what would be installed, updated or is already in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd, flags)
		if err != nil {
			return err
		}
		s, err := newSession(cfg, flags.logFile)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := s.source.Load(cmd.Context(), s.config.Scope, s.config.ProjectPath)
		if err != nil {
			return err
		}
		for _, w := range snap.Warnings {
			fmt.Fprintf(os.Stderr, "%s %s\n", text.FgYellow.Sprint("warning:"), w)
		}
		renderStatus(os.Stdout, s.target, s.config.Installer, snap)
		return nil
	},
}

// renderStatus writes one table row per component, MCP server and plugin.
func renderStatus(w io.Writer, target cli.Target, in *installer.Installer, snap app.Snapshot) {
	if len(snap.Components)+len(snap.MCP)+len(snap.Plugins) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("Nothing to install: the source bundle is empty."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"KIND", "NAME", "STATUS", ""})

	settings := snap.Settings
	if settings == nil {
		settings = merge.Document{}
	}
	pending := 0
	for _, c := range snap.Components {
		mark := ""
		if in != nil && c.Installed() && in.IsDefault(c, settings) {
			mark = "default"
		}
		if c.Status == component.New || c.Status == component.Modified {
			pending++
		}
		t.AppendRow(table.Row{c.Kind.String(), c.Name, colorStatus(c.Status.String()), mark})
	}
	if len(snap.Components) > 0 && (len(snap.MCP) > 0 || len(snap.Plugins) > 0) {
		t.AppendSeparator()
	}
	for _, m := range snap.MCP {
		t.AppendRow(table.Row{"MCP", m.Server.Name, colorStatus(installedLabel(m.Installed)), m.Server.Category})
	}
	for _, p := range snap.Plugins {
		t.AppendRow(table.Row{"Plugin", p.Plugin.Key(), colorStatus(installedLabel(p.Installed)), ""})
	}
	t.Render()

	fmt.Fprintf(w, "\n%s %d component(s) new or modified for %s",
		text.FgHiBlue.Sprint("Pending:"), pending, target.Title())
	if snap.Revision != "" {
		fmt.Fprintf(w, " (source %s)", snap.Revision)
	}
	fmt.Fprintln(w)
}

func installedLabel(installed bool) string {
	if installed {
		return "installed"
	}
	return "not installed"
}

func colorStatus(s string) string {
	switch s {
	case "new":
		return text.FgGreen.Sprint(s)
	case "modified":
		return text.FgYellow.Sprint(s)
	case "managed":
		return text.FgCyan.Sprint(s)
	case "not installed":
		return text.FgHiBlack.Sprint(s)
	default:
		return s
	}
}
