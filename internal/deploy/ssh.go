package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
)

const dialTimeout = 30 * time.Second

// sshRunner holds one SSH connection and an sftp client on top of it.
// Commands each get a fresh session on the shared connection.
type sshRunner struct {
	client *ssh.Client
	sftp   *sftp.Client
	home   string
}

// DialSSH opens the production Runner: public-key auth, known_hosts
// verification, one TCP connection for the whole deploy.
func DialSSH(ctx context.Context, target Target) (Runner, error) {
	keyPath := target.KeyPath
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		keyPath = filepath.Join(home, ".ssh", "id_ed25519")
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, dserrors.UserError{
			Message:    "Cannot read SSH private key " + keyPath,
			Suggestion: "Set deploy.key_path in airlift.yaml or generate a key with ssh-keygen",
			Err:        err,
		}
	}
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, dserrors.UserError{
			Message:    "Cannot parse SSH private key " + keyPath,
			Suggestion: "Passphrase-protected keys are not supported; use an agent-free deploy key",
			Err:        err,
		}
	}

	hostKeys, err := knownHostsCallback()
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         dialTimeout,
	}

	addr := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, dserrors.UserError{
			Message:    "SSH connection to " + addr + " failed",
			Suggestion: "Check deploy.host/port/user and that the public key is in authorized_keys",
			Err:        err,
		}
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to open sftp channel: %w", err)
	}

	home, err := sftpClient.Getwd()
	if err != nil {
		sftpClient.Close()
		client.Close()
		return nil, fmt.Errorf("failed to resolve remote home directory: %w", err)
	}

	return &sshRunner{client: client, sftp: sftpClient, home: home}, nil
}

func knownHostsCallback() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	path := filepath.Join(home, ".ssh", "known_hosts")

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, dserrors.UserError{
			Message:    "Cannot load known_hosts from " + path,
			Suggestion: "Connect to the host once with ssh to record its key, then retry",
			Err:        err,
		}
	}
	return callback, nil
}

func (r *sshRunner) Run(ctx context.Context, cmd string) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	session, err := r.client.NewSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	// ssh sessions cannot be cancelled mid-command; watch the context
	// and kill the connection-level channel by closing the session.
	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		session.Close()
		<-done
		err = ctx.Err()
	}

	return stdout.Bytes(), stderr.Bytes(), err
}

func (r *sshRunner) RunInput(ctx context.Context, cmd string, stdin io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := r.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	session.Stdin = stdin

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		session.Close()
		<-done
		return ctx.Err()
	}
}

func (r *sshRunner) Upload(ctx context.Context, content io.Reader, remotePath string, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.sftp.MkdirAll(filepath.Dir(remotePath)); err != nil {
		return fmt.Errorf("failed to create remote directory for %s: %w", remotePath, err)
	}

	f, err := r.sftp.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write remote file %s: %w", remotePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close remote file %s: %w", remotePath, err)
	}

	if err := r.sftp.Chmod(remotePath, mode); err != nil {
		return fmt.Errorf("failed to chmod remote file %s: %w", remotePath, err)
	}
	return nil
}

func (r *sshRunner) Home() string { return r.home }

func (r *sshRunner) Close() error {
	r.sftp.Close()
	return r.client.Close()
}
