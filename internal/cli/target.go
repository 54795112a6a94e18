// Package cli drives the assistant CLIs that own MCP server and plugin
// registration.
package cli

import (
	"fmt"
	"strings"

	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/paths"
)

// Target is the assistant CLI being configured.
type Target int

const (
	Claude Target = iota
	Codex
)

// ParseTarget accepts "claude" or "codex".
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude", "":
		return Claude, nil
	case "codex":
		return Codex, nil
	default:
		return Claude, fmt.Errorf("unknown target %q (want claude or codex)", s)
	}
}

func (t Target) String() string {
	switch t {
	case Claude:
		return "claude"
	case Codex:
		return "codex"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Title is the display name of the target.
func (t Target) Title() string {
	switch t {
	case Claude:
		return "Claude Code"
	case Codex:
		return "Codex CLI"
	default:
		return t.String()
	}
}

// Executable is the program name of the target CLI.
func (t Target) Executable() string {
	return t.String()
}

// DefaultDest is the target's configuration directory.
func (t Target) DefaultDest() string {
	switch t {
	case Codex:
		return paths.CodexDir()
	default:
		return paths.ClaudeDir()
	}
}

// DestDirs maps component kinds to target-specific destination directories.
func (t Target) DestDirs() map[component.Kind]string {
	switch t {
	case Codex:
		return map[component.Kind]string{component.Commands: "prompts"}
	default:
		return nil
	}
}

// SupportsScope reports whether MCP registrations of the target have a scope.
func (t Target) SupportsScope() bool {
	return t == Claude
}

// Scope is the breadth of an MCP server registration.
type Scope int

const (
	ScopeUser Scope = iota
	ScopeLocal
)

// ParseScope accepts "user" or "local".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "":
		return ScopeUser, nil
	case "local":
		return ScopeLocal, nil
	default:
		return ScopeUser, fmt.Errorf("unknown scope %q (want user or local)", s)
	}
}

func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	default:
		return "user"
	}
}

// Toggle flips between user and local.
func (s Scope) Toggle() Scope {
	if s == ScopeUser {
		return ScopeLocal
	}
	return ScopeUser
}
