package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/marketplace"
	"github.com/ruminaider/claude-installer/internal/mcp"
)

var (
	// ErrCommandFailed wraps a non-zero exit of the target CLI. The error
	// text carries the trimmed stderr.
	ErrCommandFailed = errors.New("command failed")
	// ErrProjectPathRequired is returned for a local-scope MCP operation
	// without a project directory.
	ErrProjectPathRequired = errors.New("local scope requires a project path")
)

// Orchestrator issues MCP and plugin commands against one target CLI.
type Orchestrator struct {
	target    Target
	runner    Runner
	logger    *slog.Logger
	goos      string
	claudeDir string
	codexDir  string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for command traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithGOOS overrides the host platform used to build invocations.
func WithGOOS(goos string) Option {
	return func(o *Orchestrator) { o.goos = goos }
}

// WithClaudeDir sets where installed_plugins.json is read from.
func WithClaudeDir(dir string) Option {
	return func(o *Orchestrator) { o.claudeDir = dir }
}

// WithCodexDir sets where config.toml is read from.
func WithCodexDir(dir string) Option {
	return func(o *Orchestrator) { o.codexDir = dir }
}

// New returns an Orchestrator. A nil runner executes real processes.
func New(target Target, runner Runner, opts ...Option) *Orchestrator {
	if runner == nil {
		runner = ExecRunner{}
	}
	o := &Orchestrator{
		target:    target,
		runner:    runner,
		goos:      runtime.GOOS,
		claudeDir: Claude.DefaultDest(),
		codexDir:  Codex.DefaultDest(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Target returns the configured target CLI.
func (o *Orchestrator) Target() Target {
	return o.target
}

func (o *Orchestrator) command(dir string, args ...string) Command {
	cmd := platformCommand(o.goos, o.target.Executable(), args...)
	cmd.Dir = dir
	return cmd
}

// run executes cmd and converts a failure into ErrCommandFailed carrying the
// trimmed stderr, or the process error when stderr is empty.
func (o *Orchestrator) run(ctx context.Context, cmd Command) ([]byte, error) {
	o.logger.Debug("running command", slog.String("command", cmd.String()), slog.String("dir", cmd.Dir))
	stdout, stderr, err := o.runner.Run(ctx, cmd)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		o.logger.Warn("command failed", slog.String("command", cmd.String()), slog.String("error", msg))
		return stdout, fmt.Errorf("%w: %s", ErrCommandFailed, msg)
	}
	return stdout, nil
}

// scopeDir validates scope and returns the working directory for it.
func (o *Orchestrator) scopeDir(scope Scope, projectPath string) (string, error) {
	if !o.target.SupportsScope() || scope != ScopeLocal {
		return "", nil
	}
	if strings.TrimSpace(projectPath) == "" {
		return "", ErrProjectPathRequired
	}
	return projectPath, nil
}

// InstallMCP registers server with the target CLI. env holds KEY=value pairs
// in the order they are passed.
func (o *Orchestrator) InstallMCP(ctx context.Context, server mcp.Server, scope Scope, projectPath string, env []mcp.EnvValue) error {
	dir, err := o.scopeDir(scope, projectPath)
	if err != nil {
		return err
	}

	var args []string
	switch o.target {
	case Claude:
		args = []string{"mcp", "add", "--scope", scope.String(), server.Name}
		for _, e := range env {
			args = append(args, "-e", e.String())
		}
		if server.IsHTTP() {
			args = append(args, "-t", "http", server.URL)
		} else {
			args = append(append(args, "--"), server.Args()...)
		}
	case Codex:
		args = []string{"mcp", "add"}
		for _, e := range env {
			args = append(args, "--env", e.String())
		}
		args = append(args, server.Name)
		if server.IsHTTP() {
			args = append(args, "--url", server.URL)
		} else {
			args = append(append(args, "--"), server.Args()...)
		}
	default:
		return fmt.Errorf("unsupported target %s", o.target)
	}

	if _, err := o.run(ctx, o.command(dir, args...)); err != nil {
		return fmt.Errorf("installing MCP server %s: %w", server.Name, err)
	}
	return nil
}

// RemoveMCP unregisters server from the target CLI.
func (o *Orchestrator) RemoveMCP(ctx context.Context, server mcp.Server, scope Scope, projectPath string) error {
	dir, err := o.scopeDir(scope, projectPath)
	if err != nil {
		return err
	}
	args := []string{"mcp", "remove"}
	if o.target.SupportsScope() {
		args = append(args, "--scope", scope.String())
	}
	args = append(args, server.Name)

	if _, err := o.run(ctx, o.command(dir, args...)); err != nil {
		return fmt.Errorf("removing MCP server %s: %w", server.Name, err)
	}
	return nil
}

// InstallPlugin installs p, registering its marketplace first when the
// target CLI does not list it yet.
func (o *Orchestrator) InstallPlugin(ctx context.Context, p marketplace.Plugin) error {
	if err := o.ensureMarketplace(ctx, p); err != nil {
		return err
	}
	if _, err := o.run(ctx, o.command("", "plugin", "install", p.Key())); err != nil {
		return fmt.Errorf("installing plugin %s: %w", p.Name, err)
	}
	return nil
}

func (o *Orchestrator) ensureMarketplace(ctx context.Context, p marketplace.Plugin) error {
	out, err := o.run(ctx, o.command("", "plugin", "marketplace", "list"))
	if err == nil && strings.Contains(string(out), p.Marketplace) {
		return nil
	}
	if p.Source == "" {
		return fmt.Errorf("adding marketplace %s: no source URL", p.Marketplace)
	}
	if _, err := o.run(ctx, o.command("", "plugin", "marketplace", "add", p.Source)); err != nil {
		return fmt.Errorf("adding marketplace %s: %w", p.Marketplace, err)
	}
	o.logger.Info("added marketplace", slog.String("marketplace", p.Marketplace), slog.String("source", p.Source))
	return nil
}

// RemovePlugin uninstalls p.
func (o *Orchestrator) RemovePlugin(ctx context.Context, p marketplace.Plugin) error {
	if _, err := o.run(ctx, o.command("", "plugin", "uninstall", p.Name)); err != nil {
		return fmt.Errorf("removing plugin %s: %w", p.Name, err)
	}
	return nil
}

// InstalledMCP returns the names of MCP servers registered with the target.
// For Claude the query runs in projectPath when scope is local, so project
// registrations are included.
func (o *Orchestrator) InstalledMCP(ctx context.Context, scope Scope, projectPath string) (map[string]bool, error) {
	switch o.target {
	case Codex:
		return readCodexMCP(filepath.Join(o.codexDir, "config.toml"))
	default:
		dir := ""
		if scope == ScopeLocal {
			dir = projectPath
		}
		out, err := o.run(ctx, o.command(dir, "mcp", "list"))
		if err != nil {
			return nil, fmt.Errorf("listing MCP servers: %w", err)
		}
		return parseMCPList(out), nil
	}
}

// parseMCPList extracts server names from `claude mcp list`, whose entries
// look like "name: command - ✓ Connected".
func parseMCPList(out []byte) map[string]bool {
	names := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		name := line[:idx]
		if strings.ContainsAny(name, " \t") {
			continue
		}
		names[name] = true
	}
	return names
}

func readCodexMCP(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading codex config: %w", err)
	}
	var cfg struct {
		MCPServers map[string]any `toml:"mcp_servers"`
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing codex config: %w", err)
	}
	names := make(map[string]bool, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names[name] = true
	}
	return names, nil
}

// InstalledPlugins returns the installed plugin references. Entries are
// "name@marketplace" where the target reports them that way and bare names
// otherwise; use PluginInstalled to test a catalog entry.
func (o *Orchestrator) InstalledPlugins(ctx context.Context) (map[string]bool, error) {
	switch o.target {
	case Codex:
		out, err := o.run(ctx, o.command("", "plugin", "list"))
		if err != nil {
			return nil, fmt.Errorf("listing plugins: %w", err)
		}
		return parsePluginList(out), nil
	default:
		installed, err := claudecode.ReadInstalledPlugins(o.claudeDir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return map[string]bool{}, nil
			}
			return nil, err
		}
		keys := map[string]bool{}
		for _, k := range installed.PluginKeys() {
			keys[k] = true
		}
		return keys, nil
	}
}

func parsePluginList(out []byte) map[string]bool {
	keys := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(strings.TrimLeft(sc.Text(), "-*•✓❯ \t"))
		if len(fields) == 0 {
			continue
		}
		keys[fields[0]] = true
	}
	return keys
}

// PluginInstalled tests p against a set returned by InstalledPlugins.
func PluginInstalled(installed map[string]bool, p marketplace.Plugin) bool {
	return installed[p.Key()] || installed[p.Name]
}
