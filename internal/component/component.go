package component

import (
	"fmt"
	"path/filepath"

	"github.com/ruminaider/claude-installer/internal/merge"
	"github.com/ruminaider/claude-installer/internal/paths"
)

// Kind is the closed set of installable artifact kinds.
type Kind int

const (
	Agents Kind = iota
	Commands
	Contexts
	Rules
	Skills
	Hooks
	OutputStyles
	Statusline
	ConfigFile
)

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return []Kind{Agents, Commands, Contexts, Rules, Skills, Hooks, OutputStyles, Statusline, ConfigFile}
}

// Dir returns the directory name of the kind inside the source bundle. For
// every kind except ConfigFile it is also the default destination directory.
func (k Kind) Dir() string {
	switch k {
	case Agents:
		return "agents"
	case Commands:
		return "commands"
	case Contexts:
		return "contexts"
	case Rules:
		return "rules"
	case Skills:
		return "skills"
	case Hooks:
		return "hooks"
	case OutputStyles:
		return "output-styles"
	case Statusline:
		return "statusline"
	case ConfigFile:
		return "config"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case Agents:
		return "Agents"
	case Commands:
		return "Commands"
	case Contexts:
		return "Contexts"
	case Rules:
		return "Rules"
	case Skills:
		return "Skills"
	case Hooks:
		return "Hooks"
	case OutputStyles:
		return "Output Styles"
	case Statusline:
		return "Statusline"
	case ConfigFile:
		return "Config"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// markdownOnly reports whether only .md files of this kind are artifacts.
func (k Kind) markdownOnly() bool {
	switch k {
	case Agents, Commands, Contexts, Rules, OutputStyles:
		return true
	case Skills, Hooks, Statusline, ConfigFile:
		return false
	default:
		return false
	}
}

// Status classifies a component against the destination.
type Status int

const (
	New       Status = iota // nothing at the destination
	Modified                // destination differs
	Unchanged               // destination is identical
	Managed                 // lives only inside the settings document
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Modified:
		return "modified"
	case Unchanged:
		return "installed"
	case Managed:
		return "managed"
	default:
		return "unknown"
	}
}

// HookConfig is the hook.yaml manifest that sits next to a hook binary.
type HookConfig struct {
	Name    string `yaml:"name"`
	Event   string `yaml:"event"`
	Type    string `yaml:"type"`
	Timeout *int   `yaml:"timeout,omitempty"`
	// Command registers a hook that has no binary in the bundle.
	Command string `yaml:"command,omitempty"`
}

// Component is one installable artifact.
type Component struct {
	Kind        Kind
	Name        string // path relative to the kind's destination root, slash separated
	SourcePath  string
	DestPath    string // empty for settings-only hooks
	Status      Status
	Selected    bool
	Hook        *HookConfig
	Description string
}

// newComponent builds a component whose selection follows its status.
func newComponent(kind Kind, name, src, dst string, status Status) Component {
	return Component{
		Kind:       kind,
		Name:       name,
		SourcePath: src,
		DestPath:   dst,
		Status:     status,
		Selected:   status != Unchanged,
	}
}

// Key uniquely identifies a component within one scan.
func (c Component) Key() string {
	return c.Kind.Dir() + "/" + c.Name
}

// DisplayName is the label used in lists and logs.
func (c Component) DisplayName() string {
	return c.Key()
}

// IsSettings reports whether c is the settings document of the bundle.
func (c Component) IsSettings() bool {
	return c.Kind == ConfigFile && c.Name == SettingsName
}

// Installed reports whether anything of c exists at the destination.
func (c Component) Installed() bool {
	return c.Status != New
}

// MergeHook returns the settings registration for a Hooks component.
func (c Component) MergeHook() (merge.Hook, bool) {
	if c.Kind != Hooks || c.Hook == nil {
		return merge.Hook{}, false
	}
	h := merge.Hook{
		Name:    c.Hook.Name,
		Event:   c.Hook.Event,
		Type:    c.Hook.Type,
		Timeout: c.Hook.Timeout,
		Command: c.Hook.Command,
	}
	if h.Type == "" {
		h.Type = "command"
	}
	if c.DestPath != "" {
		base := filepath.Base(c.DestPath)
		h.Name = base
		h.Command = paths.CommandPath(filepath.Dir(c.DestPath), base)
	}
	return h, true
}
