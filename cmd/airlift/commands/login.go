package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/airlift-sh/airlift/internal/config"
	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/secretstores"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var tokenStdin bool

	cmd := &cobra.Command{
		Use:       "login [github]",
		Short:     "Store a GitHub token in the system keyring",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"github"},
		Long: `Save a GitHub token in the OS keyring so sync can authenticate the gh
CLI without GH_TOKEN in the environment. The token is prompted without
echo, or read from stdin with --token-stdin.

Examples:
  airlift login github
  gh auth token | airlift login github --token-stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if tokenStdin {
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return dserrors.UserError{
						Message:    "Failed to read token from stdin",
						Suggestion: "Pipe the token: gh auth token | airlift login github --token-stdin",
						Err:        err,
					}
				}
				token = strings.TrimSpace(line)
			} else {
				fmt.Fprint(os.Stderr, "GitHub token: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return dserrors.UserError{
						Message:    "Failed to read token from the terminal",
						Suggestion: "Use --token-stdin when no TTY is available",
						Err:        err,
					}
				}
				token = strings.TrimSpace(string(raw))
			}

			if token == "" {
				return dserrors.UserError{
					Message:    "Empty token",
					Suggestion: "Generate one with 'gh auth token' or at github.com/settings/tokens",
				}
			}

			if err := keyring.Set(secretstores.KeyringService, secretstores.KeyringGitHubUser, token); err != nil {
				return dserrors.UserError{
					Message:    "Failed to store token in the system keyring",
					Suggestion: "Check that a keyring daemon is available, or export GH_TOKEN instead",
					Err:        err,
				}
			}

			cfg.Logger.Info("token stored in keyring (service %s)", secretstores.KeyringService)
			return nil
		},
	}

	cmd.Flags().BoolVar(&tokenStdin, "token-stdin", false, "Read the token from stdin instead of prompting")

	return cmd
}
