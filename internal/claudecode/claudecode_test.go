package claudecode_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/merge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClaudeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plugins"), 0755))
	return dir
}

func TestReadInstalledPlugins(t *testing.T) {
	dir := setupClaudeDir(t)
	data := `{
		"version": 2,
		"plugins": {
			"context7@claude-plugins-official": [{"scope":"user","installPath":"/p","version":"1.0.0"}],
			"beads@beads-marketplace": [{"scope":"user","installPath":"/p","version":"0.44.0"}]
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugins", "installed_plugins.json"), []byte(data), 0644))

	plugins, err := claudecode.ReadInstalledPlugins(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"beads@beads-marketplace", "context7@claude-plugins-official"}, plugins.PluginKeys())
}

func TestReadInstalledPlugins_FileNotFound(t *testing.T) {
	_, err := claudecode.ReadInstalledPlugins(t.TempDir())
	assert.Error(t, err)
}

func TestReadSettingsFile(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		doc, err := claudecode.ReadSettingsFile(filepath.Join(t.TempDir(), "settings.json"))
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"a":`), 0644))
		_, err := claudecode.ReadSettingsFile(path)
		assert.Error(t, err)
	})
}

func TestWriteSettingsFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	require.NoError(t, claudecode.WriteSettingsFile(path, merge.Document{"model": "opus"}))

	doc, err := claudecode.ReadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "opus", doc["model"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestUpdateSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, claudecode.SettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0644))

	err := claudecode.UpdateSettings(dir, func(d merge.Document) (merge.Document, error) {
		return merge.SetOutputStyle(d, "concise"), nil
	})
	require.NoError(t, err)

	doc, err := claudecode.ReadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", doc["theme"])
	assert.Equal(t, "concise", doc["outputStyle"])
}

func TestUpdateSettings_MalformedIsNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, claudecode.SettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0644))

	called := false
	err := claudecode.UpdateSettings(dir, func(d merge.Document) (merge.Document, error) {
		called = true
		return d, nil
	})
	assert.Error(t, err)
	assert.False(t, called)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{broken`, string(data))
}

func TestUpdateSettings_CallbackError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	err := claudecode.UpdateSettings(dir, func(d merge.Document) (merge.Document, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(filepath.Join(dir, claudecode.SettingsFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpdateSettings_MissingFileStaysMissingWhenNothingChanges(t *testing.T) {
	dir := t.TempDir()
	err := claudecode.UpdateSettings(dir, func(d merge.Document) (merge.Document, error) {
		next, _ := merge.UnregisterHook(d, merge.Hook{Name: "guard", Event: "PreToolUse", Command: "~/.claude/hooks/guard"})
		return next, nil
	})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, claudecode.SettingsFile))
}
