package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/airlift-sh/airlift/cmd/airlift/commands"
	"github.com/airlift-sh/airlift/internal/config"
	"github.com/airlift-sh/airlift/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "airlift",
		Short: "Sync env files to secret stores and deploy over SSH",
		Long: `airlift pushes a local KEY=VALUE env file into a remote secret/variable
store and deploys the project tree to a remote host, provisioning a
pm2-supervised service with a reboot persistence hook.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Debug = debug
			cfg.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "airlift.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewSyncCommand(cfg),
		commands.NewDeployCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewStoresCommand(cfg),
		commands.NewLoginCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
