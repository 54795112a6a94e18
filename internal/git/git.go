package git

import (
	"os/exec"
	"strings"
)

// Run executes a git command in the given directory and returns trimmed stdout.
func Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(out)), err
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo returns true if dir is inside a git work tree.
func IsRepo(dir string) bool {
	_, err := Run(dir, "rev-parse", "--git-dir")
	return err == nil
}

// IsClean returns true if the working tree has no uncommitted changes.
func IsClean(dir string) (bool, error) {
	out, err := Run(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// ShortHead returns the abbreviated HEAD revision of the bundle at dir,
// suffixed with "-dirty" when the work tree has local changes. It returns ""
// when dir is not a repository or has no commits.
func ShortHead(dir string) string {
	if !IsRepo(dir) {
		return ""
	}
	rev, err := Run(dir, "rev-parse", "--short", "HEAD")
	if err != nil || rev == "" {
		return ""
	}
	if clean, err := IsClean(dir); err == nil && !clean {
		rev += "-dirty"
	}
	return rev
}
