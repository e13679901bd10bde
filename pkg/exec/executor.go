// Package exec abstracts external command execution so CLI-backed stores
// can be tested without the real tool installed.
package exec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// Command describes one invocation. Stdin lets callers pipe secret bodies
// to the child process instead of passing them on argv, where they would
// be visible in the process table.
type Command struct {
	Name  string
	Args  []string
	Stdin io.Reader
	Env   []string // appended to the inherited environment
}

// Executor runs external commands.
type Executor interface {
	Run(ctx context.Context, cmd Command) (stdout []byte, stderr []byte, err error)
}

// OSExecutor is the production implementation backed by os/exec.
type OSExecutor struct{}

// Run executes the command and captures both output streams.
func (OSExecutor) Run(ctx context.Context, command Command) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	if command.Stdin != nil {
		cmd.Stdin = command.Stdin
	}
	if len(command.Env) > 0 {
		cmd.Env = append(cmd.Environ(), command.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Default returns the production executor.
func Default() Executor {
	return OSExecutor{}
}

// ExitCode extracts the child's exit code from a Run error. Returns 0 for
// nil and -1 when the command never ran (e.g. binary not found).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
