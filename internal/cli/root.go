package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	root := &cobra.Command{
		Use:   "panelcfg",
		Short: "Terminal configurator for acoustic panels",
		Long:  "Panelcfg: pick brand, model and panel options, calculate quantities, and share the result as a link.",
	}

	root.PersistentFlags().String("api", "", "API origin (default: $PANELCFG_API_URL, or the dev backend)")
	root.PersistentFlags().String("share-base", "", "Base URL share links are built on (default: $PANELCFG_SHARE_URL)")
	root.PersistentFlags().String("env-file", "", "Path to a dotenv file to load before reading the environment")

	// Add subcommands
	root.AddCommand(newConfigureCmd())

	if err := root.Execute(); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func mustGetStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flag error:", err)
		os.Exit(2)
	}
	return v
}
