package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Config represents ~/.claude-installer/config.yaml.
type Config struct {
	Source      string `yaml:"source,omitempty"`
	Target      string `yaml:"target,omitempty"`
	Dest        string `yaml:"dest,omitempty"`
	MCPScope    string `yaml:"mcp_scope,omitempty"`
	ProjectPath string `yaml:"project_path,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Target:   "claude",
		MCPScope: "user",
		LogLevel: "info",
	}
}

// Parse parses config.yaml bytes into a Config. Fields left empty in the file
// keep their default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the config file at path. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Marshal serializes a Config to YAML bytes.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Target {
	case "", "claude", "codex":
	default:
		return fmt.Errorf("invalid target %q: must be claude or codex", c.Target)
	}
	switch c.MCPScope {
	case "", "user", "local":
	default:
		return fmt.Errorf("invalid mcp_scope %q: must be user or local", c.MCPScope)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// Overlay returns c with every non-empty field of o applied on top.
func (c Config) Overlay(o Config) Config {
	if o.Source != "" {
		c.Source = o.Source
	}
	if o.Target != "" {
		c.Target = o.Target
	}
	if o.Dest != "" {
		c.Dest = o.Dest
	}
	if o.MCPScope != "" {
		c.MCPScope = o.MCPScope
	}
	if o.ProjectPath != "" {
		c.ProjectPath = o.ProjectPath
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	return c
}
