package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/airlift-sh/airlift/internal/config"
	dserrors "github.com/airlift-sh/airlift/internal/errors"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and local tooling",
		Long: `Validate the config file, probe every configured store for working
credentials, and check the local tools and environment a deploy needs.

Examples:
  airlift doctor
  airlift doctor --config airlift.production.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			failures := 0

			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("config: %v", err)
				return err
			}
			cfg.Logger.Info("config: %s is valid", cfg.Path)

			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			for _, name := range registry.Names() {
				store, err := registry.Get(name)
				if err != nil {
					cfg.Logger.Error("store %s: %v", name, err)
					failures++
					continue
				}
				if err := store.Validate(ctx); err != nil {
					cfg.Logger.Error("store %s: %v", name, err)
					failures++
					continue
				}
				cfg.Logger.Info("store %s: credentials ok", name)
			}

			for _, tool := range []string{"ssh"} {
				if _, err := exec.LookPath(tool); err != nil {
					cfg.Logger.Warn("tool %s: not found in PATH", tool)
				} else {
					cfg.Logger.Info("tool %s: found", tool)
				}
			}

			if dc := cfg.Definition.Deploy; dc != nil {
				if os.Getenv(dc.LicenseKeyEnv) == "" {
					cfg.Logger.Warn("env %s: not set, deploy will refuse to run", dc.LicenseKeyEnv)
				} else {
					cfg.Logger.Info("env %s: set", dc.LicenseKeyEnv)
				}
				if dc.KeyPath != "" {
					if _, err := os.Stat(dc.KeyPath); err != nil {
						cfg.Logger.Warn("key %s: %v", dc.KeyPath, err)
					} else {
						cfg.Logger.Info("key %s: readable", dc.KeyPath)
					}
				}
			}

			if failures > 0 {
				return dserrors.UserError{
					Message:    fmt.Sprintf("doctor found %d problem(s)", failures),
					Suggestion: "Fix the reported items and re-run 'airlift doctor'",
				}
			}
			cfg.Logger.Info("all checks passed")
			return nil
		},
	}

	return cmd
}
