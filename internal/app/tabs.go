package app

import "github.com/ruminaider/claude-installer/internal/component"

// View is the mutually exclusive screen the application shows.
type View int

const (
	ViewList View = iota
	ViewDiff
	ViewEnvInput
	ViewProjectPath
	ViewInstalling
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewDiff:
		return "diff"
	case ViewEnvInput:
		return "env-input"
	case ViewProjectPath:
		return "project-path"
	case ViewInstalling:
		return "installing"
	default:
		return "unknown"
	}
}

// Tab selects the collection shown in the list view.
type Tab int

const (
	TabAgents Tab = iota
	TabCommands
	TabContexts
	TabRules
	TabSkills
	TabHooks
	TabOutputStyles
	TabStatusline
	TabConfig
	TabMCP
	TabPlugins
)

// Tabs returns every tab in display order.
func Tabs() []Tab {
	return []Tab{
		TabAgents, TabCommands, TabContexts, TabRules, TabSkills, TabHooks,
		TabOutputStyles, TabStatusline, TabConfig, TabMCP, TabPlugins,
	}
}

// Kind returns the component kind listed by t, if t lists components.
func (t Tab) Kind() (component.Kind, bool) {
	switch t {
	case TabAgents:
		return component.Agents, true
	case TabCommands:
		return component.Commands, true
	case TabContexts:
		return component.Contexts, true
	case TabRules:
		return component.Rules, true
	case TabSkills:
		return component.Skills, true
	case TabHooks:
		return component.Hooks, true
	case TabOutputStyles:
		return component.OutputStyles, true
	case TabStatusline:
		return component.Statusline, true
	case TabConfig:
		return component.ConfigFile, true
	case TabMCP, TabPlugins:
		return 0, false
	default:
		return 0, false
	}
}

// Title is the tab bar label.
func (t Tab) Title() string {
	if k, ok := t.Kind(); ok {
		return k.String()
	}
	switch t {
	case TabMCP:
		return "MCP"
	case TabPlugins:
		return "Plugins"
	default:
		return "?"
	}
}

// HasDefault reports whether items on t can be set as default.
func (t Tab) HasDefault() bool {
	return t == TabOutputStyles || t == TabStatusline
}

// tabCycle returns the tab offset steps away from current, wrapping.
func tabCycle(current Tab, step int) Tab {
	n := len(Tabs())
	return Tab(((int(current)+step)%n + n) % n)
}
