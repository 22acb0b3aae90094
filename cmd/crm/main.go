// Command crm runs the hearing center CRM API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "crm",
		Short:         "Multi-channel CRM for hearing centers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config.toml (defaults to $CONFIG_PATH)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the comment sync scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exportConfigFlag(cmd); err != nil {
				return err
			}
			runServe()
			return nil
		},
	})
	rootCmd.AddCommand(newMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exportConfigFlag forwards --config to CONFIG_PATH, which provideConfig reads.
func exportConfigFlag(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return err
	}
	return os.Setenv("CONFIG_PATH", path)
}
