// Package deploy materializes the source tree on a remote host and runs
// the fixed provisioning sequence: directories, process-manager
// descriptor, launcher script, virtualenv, pm2 restart and the cron
// persistence hook. Steps are strictly sequential and the run aborts on
// the first failure; re-deploying the same project is idempotent.
package deploy

import (
	"context"
	"io"
	"os"
)

// Runner is one remote session: command execution plus file transfer.
// The production implementation rides a single SSH connection; tests use
// a fake that records commands.
type Runner interface {
	// Run executes a shell command on the remote host.
	Run(ctx context.Context, cmd string) (stdout []byte, stderr []byte, err error)

	// RunInput executes a command with stdin attached (crontab -).
	RunInput(ctx context.Context, cmd string, stdin io.Reader) error

	// Upload writes content to remotePath with the given mode,
	// overwriting any existing file and creating parent directories
	// as needed.
	Upload(ctx context.Context, content io.Reader, remotePath string, mode os.FileMode) error

	// Home returns the remote user's home directory.
	Home() string

	// Close tears the session down.
	Close() error
}

// Dialer opens a Runner against a target. Injected so tests never dial.
type Dialer func(ctx context.Context, target Target) (Runner, error)

// Target identifies the remote host.
type Target struct {
	Host    string
	Port    int
	User    string
	KeyPath string
}
