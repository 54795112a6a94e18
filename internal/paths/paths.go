package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// InstallerDir returns ~/.claude-installer.
func InstallerDir() string {
	return filepath.Join(home(), ".claude-installer")
}

// ClaudeDir returns ~/.claude.
func ClaudeDir() string {
	return filepath.Join(home(), ".claude")
}

// CodexDir returns ~/.codex.
func CodexDir() string {
	return filepath.Join(home(), ".codex")
}

// ConfigFile returns ~/.claude-installer/config.yaml.
func ConfigFile() string {
	return filepath.Join(InstallerDir(), "config.yaml")
}

// LogFile returns ~/.claude-installer/installer.log.
func LogFile() string {
	return filepath.Join(InstallerDir(), "installer.log")
}

// CommandPath renders an installed file location the way the assistant CLI
// expects to find it in settings.json. Paths under the home directory use the
// "~/" form except on Windows, where tilde expansion is not available.
func CommandPath(dir string, elem ...string) string {
	abs := filepath.Join(append([]string{dir}, elem...)...)
	if runtime.GOOS == "windows" {
		return abs
	}
	h := home()
	if h == "" {
		return abs
	}
	rel, err := filepath.Rel(h, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return abs
	}
	return "~/" + filepath.ToSlash(rel)
}

// Expand resolves a leading "~/" against the home directory.
func Expand(p string) string {
	if p == "~" {
		return home()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home(), p[2:])
	}
	return p
}
