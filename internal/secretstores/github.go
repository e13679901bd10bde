package secretstores

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
	pkgexec "github.com/airlift-sh/airlift/pkg/exec"
	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which 'airlift login' stores
// tokens in the OS keyring.
const KeyringService = "airlift"

// KeyringGitHubUser is the keyring account name for the GitHub token.
const KeyringGitHubUser = "github-token"

// GitHubStore pushes secrets and variables to a repository's Actions
// secret/variable store through the authenticated gh CLI. Secret bodies
// are piped on stdin, never passed on argv.
type GitHubStore struct {
	name     string
	config   GitHubConfig
	logger   *logging.Logger
	executor pkgexec.Executor
}

// GitHubConfig configures the github store.
type GitHubConfig struct {
	// Repo is the owner/name target repository.
	Repo string
	// App selects the secret namespace: actions (default), codespaces
	// or dependabot.
	App string
}

// NewGitHubStore creates a github store using the real gh CLI.
func NewGitHubStore(name string, configMap map[string]interface{}, logger *logging.Logger) (*GitHubStore, error) {
	config := GitHubConfig{App: "actions"}

	if repo, ok := configMap["repo"].(string); ok {
		config.Repo = repo
	}
	if app, ok := configMap["app"].(string); ok && app != "" {
		config.App = app
	}

	if config.Repo == "" || !strings.Contains(config.Repo, "/") {
		return nil, dserrors.ConfigError{
			Field:      "repo",
			Value:      config.Repo,
			Message:    "repo must be in owner/name form",
			Suggestion: "Set stores.<name>.repo to the target repository, e.g. acme/exporter",
		}
	}

	return &GitHubStore{
		name:     name,
		config:   config,
		logger:   logger,
		executor: pkgexec.Default(),
	}, nil
}

// NewGitHubStoreWithExecutor injects a custom executor, for tests.
func NewGitHubStoreWithExecutor(name string, config GitHubConfig, logger *logging.Logger, executor pkgexec.Executor) *GitHubStore {
	if config.App == "" {
		config.App = "actions"
	}
	return &GitHubStore{name: name, config: config, logger: logger, executor: executor}
}

// Name returns the store name.
func (g *GitHubStore) Name() string { return g.name }

// Capabilities reports the gh-backed feature surface.
func (g *GitHubStore) Capabilities() Capabilities {
	return Capabilities{
		NativeVariables: true,
		RequiresAuth:    true,
		AuthMethods:     []string{"cli", "token"},
	}
}

// SetSecret writes a repository secret, overwriting any existing value.
func (g *GitHubStore) SetSecret(ctx context.Context, name string, value []byte) error {
	args := []string{"secret", "set", name, "--repo", g.config.Repo, "--app", g.config.App}
	return g.runGH(ctx, "secret set "+name, args, bytes.NewReader(value))
}

// SetVariable writes a repository variable, overwriting any existing value.
func (g *GitHubStore) SetVariable(ctx context.Context, name, value string) error {
	args := []string{"variable", "set", name, "--repo", g.config.Repo}
	return g.runGH(ctx, "variable set "+name, args, strings.NewReader(value))
}

// Validate checks that gh is installed and authenticated for the target
// repository's host.
func (g *GitHubStore) Validate(ctx context.Context) error {
	if _, err := exec.LookPath("gh"); err != nil {
		return dserrors.WrapCommandNotFound("gh", err)
	}

	_, stderr, err := g.executor.Run(ctx, pkgexec.Command{
		Name: "gh",
		Args: []string{"auth", "status"},
		Env:  g.tokenEnv(),
	})
	if err != nil {
		return AuthError{
			Store:   g.name,
			Message: fmt.Sprintf("gh auth status failed: %s", strings.TrimSpace(string(stderr))),
		}
	}
	return nil
}

// runGH executes a gh subcommand with the body on stdin. On failure it
// captures the exit code explicitly and surfaces a diagnostic suggesting
// re-authentication — the most common cause of a non-zero gh exit.
func (g *GitHubStore) runGH(ctx context.Context, operation string, args []string, stdin io.Reader) error {
	g.logger.Debug("gh %s (repo %s)", strings.Join(args[:2], " "), g.config.Repo)

	_, stderr, err := g.executor.Run(ctx, pkgexec.Command{
		Name:  "gh",
		Args:  args,
		Stdin: stdin,
		Env:   g.tokenEnv(),
	})
	if err != nil {
		code := pkgexec.ExitCode(err)
		g.logger.Debug("gh %s exited with code %d: %s", operation, code, strings.TrimSpace(string(stderr)))
		return dserrors.StoreError(g.name, operation, dserrors.CommandError{
			Command:    "gh " + operation,
			ExitCode:   code,
			Message:    strings.TrimSpace(string(stderr)),
			Suggestion: "Run 'gh auth login' (or refresh GH_TOKEN) and retry",
		})
	}
	return nil
}

// tokenEnv resolves a token for the child gh process: environment first,
// then the OS keyring populated by 'airlift login github'. An empty
// result means gh falls back to its own stored credentials.
func (g *GitHubStore) tokenEnv() []string {
	for _, name := range []string{"GH_TOKEN", "GITHUB_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			return nil // already inherited by the child
		}
	}
	token, err := keyring.Get(KeyringService, KeyringGitHubUser)
	if err != nil || token == "" {
		return nil
	}
	return []string{"GH_TOKEN=" + token}
}
