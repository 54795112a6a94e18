package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/ruminaider/claude-installer/cmd/claude-installer/tui"
	"github.com/ruminaider/claude-installer/internal/app"
)

func runTUI(cmd *cobra.Command, args []string) error {
	// TTY guard: fall back to status when stdin is not a terminal
	// (piping, CI, scripts, etc.)
	if !term.IsTerminal(os.Stdin.Fd()) {
		return statusCmd.RunE(cmd, args)
	}

	cfg, targetSet, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if !targetSet {
		if cfg.Target, err = pickTarget(); err != nil {
			return err
		}
		rememberTarget(flags, cfg.Target)
	}

	s, err := newSession(cfg, flags.logFile)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	scope, project := s.config.Scope, s.config.ProjectPath
	model := tui.New(ctx, s.config, "claude-installer "+version, func() (app.Snapshot, error) {
		return s.source.Load(ctx, scope, project)
	})
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
