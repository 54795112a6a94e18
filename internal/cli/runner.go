package cli

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string // working directory; empty inherits
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands. Implementations must capture output instead of
// inheriting the terminal and must not offer the child a readable stdin.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes cmd and returns its captured output. A nil Stdin on
// exec.Cmd connects the child to the null device.
func (ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, []byte, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = nil
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// platformCommand resolves the executable for goos. Windows installs the
// assistant CLIs as .cmd shims, which only cmd.exe can start.
func platformCommand(goos, exe string, args ...string) Command {
	if goos == "windows" {
		return Command{Name: "cmd", Args: append([]string{"/c", exe}, args...)}
	}
	return Command{Name: exe, Args: args}
}
