package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ruminaider/claude-installer/internal/app"
	"github.com/ruminaider/claude-installer/internal/cli"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/config"
	"github.com/ruminaider/claude-installer/internal/installer"
	"github.com/ruminaider/claude-installer/internal/logging"
	"github.com/ruminaider/claude-installer/internal/mcp"
	"github.com/ruminaider/claude-installer/internal/paths"
)

// cliFlags holds the persistent flags shared by every command.
type cliFlags struct {
	configPath string
	source     string
	target     string
	dest       string
	scope      string
	project    string
	logFile    string
	logLevel   string
}

var flags cliFlags

// session is everything a command needs to scan and install.
type session struct {
	target  cli.Target
	layout  component.Layout
	source  app.Source
	config  app.Config
	logger  *slog.Logger
	closers []io.Closer
}

func (s *session) Close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// loadConfig reads the config file and applies flags on top. targetSet
// reports whether the target came from a flag or the file.
func loadConfig(cmd *cobra.Command, f cliFlags) (cfg config.Config, targetSet bool, err error) {
	path := f.configPath
	if path == "" {
		path = paths.ConfigFile()
	}
	cfg, err = config.Load(path)
	if err != nil {
		return config.Config{}, false, err
	}
	_, statErr := os.Stat(path)
	targetSet = statErr == nil || cmd.Flags().Changed("target")

	cfg = cfg.Overlay(config.Config{
		Source:      f.source,
		Target:      f.target,
		Dest:        f.dest,
		MCPScope:    f.scope,
		ProjectPath: f.project,
		LogLevel:    f.logLevel,
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, false, err
	}
	return cfg, targetSet, nil
}

// rememberTarget writes the picked target to the config file so the picker
// is shown once.
func rememberTarget(f cliFlags, target string) {
	path := f.configPath
	if path == "" {
		path = paths.ConfigFile()
	}
	if err := config.Save(path, config.Config{Target: target}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

// pickTarget asks which CLI to configure.
func pickTarget() (string, error) {
	choice := cli.Claude.String()
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which CLI do you want to configure?").
				Options(
					huh.NewOption(cli.Claude.Title(), cli.Claude.String()),
					huh.NewOption(cli.Codex.Title(), cli.Codex.String()),
				).
				Value(&choice),
		),
	).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", fmt.Errorf("cancelled")
		}
		return "", err
	}
	return choice, nil
}

// newSession resolves directories and wires the collaborators for cfg.
func newSession(cfg config.Config, logFile string) (*session, error) {
	target, err := cli.ParseTarget(cfg.Target)
	if err != nil {
		return nil, err
	}
	scope, err := cli.ParseScope(cfg.MCPScope)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	source := paths.Expand(cfg.Source)
	if source == "" {
		if source, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	if source, err = filepath.Abs(source); err != nil {
		return nil, err
	}
	dest := paths.Expand(cfg.Dest)
	if dest == "" {
		dest = target.DefaultDest()
	}

	s := &session{target: target}
	if logFile == "" {
		logFile = paths.LogFile()
	}
	logger, closer, err := logging.OpenFile(logFile, level)
	if err != nil {
		// Logging is best effort; the installer still works without it.
		logger = logging.Discard()
	} else {
		s.closers = append(s.closers, closer)
	}
	s.logger = logger.With(slog.String("target", target.String()))

	s.layout = component.Layout{Source: source, Dest: dest, DestDirs: target.DestDirs()}
	orch := cli.New(target, cli.ExecRunner{}, cli.WithLogger(s.logger))
	s.source = app.Source{Layout: s.layout, Orchestrator: orch, Logger: s.logger}

	env, err := mcp.LoadEnvDefaults(s.source.EnvDefaultsPath())
	if err != nil {
		s.logger.Warn("ignoring MCP env defaults", slog.String("error", err.Error()))
		env = map[string]string{}
	}

	s.config = app.Config{
		Load:         s.source.Loader(),
		Installer:    installer.New(s.layout, s.logger),
		Orchestrator: orch,
		EnvDefaults:  env,
		Scope:        scope,
		ProjectPath:  paths.Expand(cfg.ProjectPath),
		Logger:       s.logger,
	}
	s.logger.Info("session started",
		slog.String("source", source),
		slog.String("dest", dest),
		slog.String("version", version))
	return s, nil
}
