package paths_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ruminaider/claude-installer/internal/paths"
	"github.com/stretchr/testify/assert"
)

func TestInstallerDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.True(t, strings.HasPrefix(paths.InstallerDir(), home))
	assert.True(t, strings.HasSuffix(paths.InstallerDir(), ".claude-installer"))
}

func TestClaudeDir(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.ClaudeDir(), ".claude"))
}

func TestCodexDir(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.CodexDir(), ".codex"))
}

func TestConfigFile(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.ConfigFile(), "config.yaml"))
}

func TestLogFile(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.LogFile(), "installer.log"))
}

func TestCommandPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tilde form is not used on Windows")
	}
	t.Run("under home", func(t *testing.T) {
		assert.Equal(t, "~/.claude/hooks/inject", paths.CommandPath(paths.ClaudeDir(), "hooks", "inject"))
	})
	t.Run("outside home", func(t *testing.T) {
		assert.Equal(t, filepath.Join("/opt/cfg", "hooks", "inject"), paths.CommandPath("/opt/cfg", "hooks", "inject"))
	})
}

func TestExpand(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".claude"), paths.Expand("~/.claude"))
	assert.Equal(t, "/abs", paths.Expand("/abs"))
}
