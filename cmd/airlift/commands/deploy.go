package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/airlift-sh/airlift/internal/config"
	"github.com/airlift-sh/airlift/internal/deploy"
	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/validation"
)

func NewDeployCommand(cfg *config.Config) *cobra.Command {
	var (
		project string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the source tree to the remote host",
		Long: `Copy the working tree (minus VCS metadata) to ~/<project>/ on the
configured host and run the provisioning sequence: directories, pm2
descriptor, launcher script, a fresh virtualenv, a pm2 restart under the
project's own PM2_HOME, and an idempotent @reboot crontab entry.

The required license key is checked before the session opens; an empty
key aborts the run with no remote changes.

Examples:
  airlift deploy
  airlift deploy --project airtouch-exporter --timeout 15m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			dc := cfg.Definition.Deploy
			if dc == nil {
				return dserrors.ConfigError{
					Field:      "deploy",
					Message:    "no deploy section configured",
					Suggestion: "Add deploy: with host, user and project to " + cfg.Path,
				}
			}
			if project != "" {
				dc.Project = project
			}

			// Fail-fast guard: never open a session with an empty credential.
			license, err := validation.NewLicenseKey(os.Getenv(dc.LicenseKeyEnv), dc.LicenseKeyEnv)
			if err != nil {
				return err
			}

			orch, err := deploy.NewOrchestrator(deploy.Options{
				Target: deploy.Target{
					Host:    dc.Host,
					Port:    dc.Port,
					User:    dc.User,
					KeyPath: dc.KeyPath,
				},
				Project:      dc.Project,
				License:      license,
				LicenseEnv:   dc.LicenseKeyEnv,
				Python:       dc.Python,
				AppScript:    dc.AppScript,
				Requirements: dc.Requirements,
				Source:       dc.Source,
			}, cfg.Logger, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			return orch.Deploy(ctx)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Override deploy.project from the config")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall deploy timeout")

	return cmd
}
