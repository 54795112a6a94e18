package git_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ruminaider/claude-installer/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	exec.Command("git", "-C", dir, "config", "user.email", "test@test.com").Run()
	exec.Command("git", "-C", dir, "config", "user.name", "Test").Run()
	return dir
}

func commitFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	_, err := git.Run(dir, "add", name)
	require.NoError(t, err)
	_, err = git.Run(dir, "commit", "-m", "add "+name)
	require.NoError(t, err)
}

func TestRun(t *testing.T) {
	dir := initTestRepo(t)
	out, err := git.Run(dir, "status", "--porcelain")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestIsRepo(t *testing.T) {
	t.Run("valid repo", func(t *testing.T) {
		dir := initTestRepo(t)
		assert.True(t, git.IsRepo(dir))
	})
	t.Run("not a repo", func(t *testing.T) {
		assert.False(t, git.IsRepo(t.TempDir()))
	})
	t.Run("nonexistent dir", func(t *testing.T) {
		assert.False(t, git.IsRepo("/nonexistent/path"))
	})
}

func TestShortHead(t *testing.T) {
	t.Run("no commits", func(t *testing.T) {
		dir := initTestRepo(t)
		assert.Empty(t, git.ShortHead(dir))
	})

	t.Run("clean", func(t *testing.T) {
		dir := initTestRepo(t)
		commitFile(t, dir, "agents.md", "hello")
		rev := git.ShortHead(dir)
		assert.NotEmpty(t, rev)
		assert.NotContains(t, rev, "-dirty")
	})

	t.Run("dirty", func(t *testing.T) {
		dir := initTestRepo(t)
		commitFile(t, dir, "agents.md", "hello")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "agents.md"), []byte("changed"), 0644))
		assert.Contains(t, git.ShortHead(dir), "-dirty")
	})

	t.Run("not a repo", func(t *testing.T) {
		assert.Empty(t, git.ShortHead(t.TempDir()))
	})
}
