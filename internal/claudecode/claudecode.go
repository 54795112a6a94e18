package claudecode

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ruminaider/claude-installer/internal/merge"
)

// SettingsFile is the name of the settings document inside the config dir.
const SettingsFile = "settings.json"

// InstalledPlugins represents ~/.claude/plugins/installed_plugins.json.
type InstalledPlugins struct {
	Version int                             `json:"version"`
	Plugins map[string][]PluginInstallation `json:"plugins"`
}

// PluginInstallation represents a single plugin installation entry.
type PluginInstallation struct {
	Scope       string `json:"scope"`
	InstallPath string `json:"installPath"`
	ProjectPath string `json:"projectPath,omitempty"`
	Version     string `json:"version"`
}

// PluginKeys returns the sorted plugin keys (e.g., "beads@beads-marketplace").
func (ip *InstalledPlugins) PluginKeys() []string {
	keys := make([]string, 0, len(ip.Plugins))
	for k := range ip.Plugins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReadInstalledPlugins reads installed_plugins.json.
func ReadInstalledPlugins(claudeDir string) (*InstalledPlugins, error) {
	path := filepath.Join(claudeDir, "plugins", "installed_plugins.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading installed plugins: %w", err)
	}
	var plugins InstalledPlugins
	if err := json.Unmarshal(data, &plugins); err != nil {
		return nil, fmt.Errorf("parsing installed plugins: %w", err)
	}
	return &plugins, nil
}

// ReadSettingsFile reads a settings document. A missing file is an empty
// document; a malformed one is an error.
func ReadSettingsFile(path string) (merge.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return merge.Document{}, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	doc, err := merge.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return doc, nil
}

// WriteSettingsFile writes a settings document. The content goes to a
// temporary file in the same directory first and is renamed into place, so
// readers never observe a partially written document.
func WriteSettingsFile(path string, doc merge.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("creating temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

// UpdateSettings performs one read-modify-write cycle on the settings
// document inside dir. fn receives the current document and returns the new
// one; nothing is written when fn fails or returns an equal document.
func UpdateSettings(dir string, fn func(merge.Document) (merge.Document, error)) error {
	path := filepath.Join(dir, SettingsFile)
	current, err := ReadSettingsFile(path)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	// A missing file reads as empty, so an empty result writes nothing.
	if merge.Equal(current, next) {
		return nil
	}
	return WriteSettingsFile(path, next)
}
