package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/constr-tools/panelcfg/internal/config"
	"github.com/constr-tools/panelcfg/internal/tui"
)

func newConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Open the configurator TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(
				mustGetStringFlag(cmd.Root(), "api"),
				mustGetStringFlag(cmd.Root(), "share-base"),
				mustGetStringFlag(cmd.Root(), "env-file"),
			)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			link := mustGetStringFlag(cmd, "link")
			return tui.Run(cfg, link)
		},
	}
	cmd.Flags().String("link", "", "Share link or query string to restore state from")
	return cmd
}
