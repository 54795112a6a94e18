package component

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_NewFile(t *testing.T) {
	l := setupLayout(t)
	writeFile(t, filepath.Join(l.Source, "agents", "foo.md"), "line one\nline two\n")
	comps, err := Scan(l, nil)
	require.NoError(t, err)

	out, err := Diff(comps[0], l)
	require.NoError(t, err)
	assert.Contains(t, out, "--- /dev/null")
	assert.Contains(t, out, "+line one")
	assert.Contains(t, out, "+line two")
}

func TestDiff_ModifiedFile(t *testing.T) {
	l := setupLayout(t)
	writeFile(t, filepath.Join(l.Source, "agents", "foo.md"), "a\nnew\n")
	writeFile(t, filepath.Join(l.Dest, "agents", "foo.md"), "a\nold\n")
	comps, err := Scan(l, nil)
	require.NoError(t, err)

	out, err := Diff(comps[0], l)
	require.NoError(t, err)
	assert.Contains(t, out, "-old")
	assert.Contains(t, out, "+new")
	assert.Contains(t, out, " a")
}

func TestDiff_UnchangedIsEmpty(t *testing.T) {
	l := setupLayout(t)
	writeFile(t, filepath.Join(l.Source, "agents", "foo.md"), "same\n")
	writeFile(t, filepath.Join(l.Dest, "agents", "foo.md"), "same\n")
	comps, err := Scan(l, nil)
	require.NoError(t, err)

	out, err := Diff(comps[0], l)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDiff_SettingsShowsMergedResult(t *testing.T) {
	l := setupLayout(t)
	writeFile(t, filepath.Join(l.Source, "config", "settings.json"), `{"env":{"A":"1"}}`)
	writeFile(t, filepath.Join(l.Dest, "settings.json"), `{"model":"opus"}`)
	comps, err := Scan(l, nil)
	require.NoError(t, err)

	out, err := Diff(find(t, comps, ConfigFile, "settings.json"), l)
	require.NoError(t, err)
	assert.Contains(t, out, `+  "env": {`)
	assert.NotContains(t, out, `-  "model": "opus"`)
}

func TestDiff_BinaryFile(t *testing.T) {
	l := setupLayout(t)
	writeFile(t, filepath.Join(l.Source, "statusline", "line"), "\x00\x01new")
	writeFile(t, filepath.Join(l.Dest, "statusline", "line"), "\x00\x01old")
	comps, err := Scan(l, nil)
	require.NoError(t, err)

	out, err := Diff(comps[0], l)
	require.NoError(t, err)
	assert.Contains(t, out, "Binary files")
}

func TestDiff_CommandOnlyHook(t *testing.T) {
	l := setupLayout(t)
	writeFile(t, filepath.Join(l.Source, "hooks", "fmt", "hook.yaml"), "name: fmt\nevent: Stop\ncommand: fmt-all\n")
	comps, err := Scan(l, nil)
	require.NoError(t, err)

	out, err := Diff(comps[0], l)
	require.NoError(t, err)
	assert.Contains(t, out, `"command": "fmt-all"`)
}
