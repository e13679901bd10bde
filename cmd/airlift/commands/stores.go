package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/airlift-sh/airlift/internal/config"
)

func NewStoresCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List configured stores and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			names := registry.Names()
			sort.Strings(names)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tVARIABLES\tAUTH")
			for _, name := range names {
				store, err := registry.Get(name)
				if err != nil {
					return err
				}
				caps := store.Capabilities()

				variables := "emulated"
				if caps.NativeVariables {
					variables = "native"
				}
				auth := "none"
				if caps.RequiresAuth {
					auth = strings.Join(caps.AuthMethods, ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, cfg.Definition.Stores[name].Type, variables, auth)
			}
			return w.Flush()
		},
	}

	return cmd
}
