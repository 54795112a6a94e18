// Package installer applies components to the destination directory.
package installer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/component"
	"github.com/ruminaider/claude-installer/internal/merge"
	"github.com/ruminaider/claude-installer/internal/paths"
)

var (
	// ErrNotRemovable is returned when removing the bundle settings document,
	// which is only ever merged.
	ErrNotRemovable = errors.New("settings document is merged, not removed")
	// ErrNoDefault is returned by SetDefault for kinds without a default.
	ErrNoDefault = errors.New("component kind has no default setting")
)

// Installer copies, merges and removes components.
type Installer struct {
	layout component.Layout
	logger *slog.Logger
}

// New returns an Installer for the given layout. A nil logger discards.
func New(l component.Layout, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Installer{layout: l, logger: logger}
}

// Layout returns the layout the installer writes into.
func (in *Installer) Layout() component.Layout {
	return in.layout
}

// Install writes c to the destination. Hooks are copied and registered in
// the settings document; the bundle settings document is merged.
func (in *Installer) Install(c component.Component) error {
	switch c.Kind {
	case component.Hooks:
		if c.DestPath != "" {
			if err := copyFile(c.SourcePath, c.DestPath, true); err != nil {
				return err
			}
		}
		return in.registerHook(c)
	case component.ConfigFile:
		if c.IsSettings() {
			return in.mergeSettings(c)
		}
		return copyFile(c.SourcePath, c.DestPath, false)
	case component.Statusline:
		return copyFile(c.SourcePath, c.DestPath, true)
	case component.Agents, component.Commands, component.Contexts, component.Rules,
		component.Skills, component.OutputStyles:
		return copyFile(c.SourcePath, c.DestPath, false)
	default:
		return fmt.Errorf("unknown component kind %d", int(c.Kind))
	}
}

// Remove deletes c from the destination. Hook registrations are removed from
// the settings document as well.
func (in *Installer) Remove(c component.Component) error {
	switch c.Kind {
	case component.Hooks:
		if c.DestPath != "" {
			if err := in.removeFile(c); err != nil {
				return err
			}
		}
		return in.unregisterHook(c)
	case component.ConfigFile:
		if c.IsSettings() {
			return ErrNotRemovable
		}
		return in.removeFile(c)
	case component.Agents, component.Commands, component.Contexts, component.Rules,
		component.Skills, component.OutputStyles, component.Statusline:
		return in.removeFile(c)
	default:
		return fmt.Errorf("unknown component kind %d", int(c.Kind))
	}
}

// SetDefault makes c the active output style or status line.
func (in *Installer) SetDefault(c component.Component) error {
	switch c.Kind {
	case component.OutputStyles:
		style := OutputStyleName(c)
		return claudecode.UpdateSettings(in.layout.Dest, func(doc merge.Document) (merge.Document, error) {
			return merge.SetOutputStyle(doc, style), nil
		})
	case component.Statusline:
		command := in.StatusLineCommand(c)
		return claudecode.UpdateSettings(in.layout.Dest, func(doc merge.Document) (merge.Document, error) {
			return merge.SetStatusLine(doc, command), nil
		})
	case component.Agents, component.Commands, component.Contexts, component.Rules,
		component.Skills, component.Hooks, component.ConfigFile:
		return ErrNoDefault
	default:
		return ErrNoDefault
	}
}

// OutputStyleName is the settings value selecting c as output style.
func OutputStyleName(c component.Component) string {
	return strings.TrimSuffix(path.Base(c.Name), path.Ext(c.Name))
}

// StatusLineCommand is the settings command running c as status line.
func (in *Installer) StatusLineCommand(c component.Component) string {
	return paths.CommandPath(in.layout.DestRoot(component.Statusline), filepath.FromSlash(c.Name))
}

// IsDefault reports whether c is the active output style or status line in
// doc.
func (in *Installer) IsDefault(c component.Component, doc merge.Document) bool {
	switch c.Kind {
	case component.OutputStyles:
		return merge.OutputStyle(doc) == OutputStyleName(c)
	case component.Statusline:
		cur := merge.StatusLineCommand(doc)
		return cur != "" && (cur == in.StatusLineCommand(c) ||
			paths.Expand(cur) == filepath.Join(in.layout.DestRoot(component.Statusline), filepath.FromSlash(c.Name)))
	default:
		return false
	}
}

func (in *Installer) registerHook(c component.Component) error {
	h, ok := c.MergeHook()
	if !ok {
		return nil
	}
	return claudecode.UpdateSettings(in.layout.Dest, func(doc merge.Document) (merge.Document, error) {
		next, added := merge.RegisterHook(doc, h)
		if added {
			in.logger.Info("registered hook", slog.String("event", h.Event), slog.String("command", h.Command))
		}
		return next, nil
	})
}

func (in *Installer) unregisterHook(c component.Component) error {
	h, ok := c.MergeHook()
	if !ok {
		return nil
	}
	return claudecode.UpdateSettings(in.layout.Dest, func(doc merge.Document) (merge.Document, error) {
		next, removed := merge.UnregisterHook(doc, h)
		if removed {
			in.logger.Info("unregistered hook", slog.String("command", h.Command))
		}
		return next, nil
	})
}

func (in *Installer) mergeSettings(c component.Component) error {
	data, err := os.ReadFile(c.SourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.SourcePath, err)
	}
	src, err := merge.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.SourcePath, err)
	}
	return claudecode.UpdateSettings(filepath.Dir(c.DestPath), func(doc merge.Document) (merge.Document, error) {
		return merge.Merge(src, doc), nil
	})
}

// removeFile deletes the destination file and any directories left empty
// below the kind root.
func (in *Installer) removeFile(c component.Component) error {
	if err := os.Remove(c.DestPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", c.DestPath, err)
	}
	root := filepath.Clean(in.layout.DestRoot(c.Kind))
	for dir := filepath.Dir(c.DestPath); dir != root && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

// copyFile copies src to dst, creating parent directories. Executables,
// shell scripts and files executable at the source get mode 0755.
func copyFile(src, dst string, executable bool) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	mode := os.FileMode(0644)
	if executable || strings.EqualFold(filepath.Ext(src), ".sh") {
		mode = 0755
	} else if info, err := os.Stat(src); err == nil && info.Mode()&0111 != 0 {
		mode = 0755
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if runtime.GOOS != "windows" {
		// WriteFile leaves the mode of an existing file untouched.
		if err := os.Chmod(dst, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", dst, err)
		}
	}
	return nil
}
