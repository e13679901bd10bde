package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/airlift-sh/airlift/internal/config"
	"github.com/airlift-sh/airlift/internal/secretstores"
	"github.com/airlift-sh/airlift/internal/syncer"
)

func NewSyncCommand(cfg *config.Config) *cobra.Command {
	var (
		envFile   string
		storeName string
		strict    bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push an env file to a secret/variable store",
		Long: `Read a KEY=VALUE env file and perform one remote mutation per entry:

  SECRET_<NAME>            inline secret, body is the literal value
  SECRET_<NAME>_FILEPATH   file secret, body read from the file at the value
  VAR_<NAME>               variable, body is the literal value

Anything else is ignored silently. An unreadable file secret logs a
warning and the run continues; remote failures abort immediately under
--strict, otherwise they are collected and reported at the end.

Examples:
  airlift sync --file .env
  airlift sync --file .env.production --store github --strict
  airlift sync --file .env --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			var store secretstores.Store
			if dryRun {
				store = secretstores.NewMemoryStore("dry-run")
			} else {
				var err error
				store, err = buildStore(cfg, storeName)
				if err != nil {
					return err
				}
			}

			ctx := context.Background()
			report, err := syncer.New(store, cfg.Logger, strict).Sync(ctx, envFile)

			set, skipped, failed := report.Counts()
			cfg.Logger.Info("sync finished: %d set, %d skipped, %d failed", set, skipped, failed)
			if dryRun {
				cfg.Logger.Warn("dry run: nothing was written to a remote store")
			}
			if err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "file", ".env", "Env file to sync")
	cmd.Flags().StringVar(&storeName, "store", "", "Configured store name (defaults to the only one)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on the first remote failure")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and classify without remote writes")

	return cmd
}
