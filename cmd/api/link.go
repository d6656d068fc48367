package main

import (
	"fmt"

	"github.com/SergeiKhy/link-tracker/internal/app"
	"github.com/spf13/cobra"
)

// newLinkCmd административные операции над ссылками. HTTP API не умеет
// выключать ссылки, поэтому is_active меняется только отсюда.
func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Administer links",
	}

	cmd.AddCommand(
		newSetActiveCmd("deactivate", "Disable redirects for a link", false),
		newSetActiveCmd("activate", "Re-enable redirects for a link", true),
	)

	return cmd
}

func newSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <link-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			storage, err := app.OpenStorage(cfg.DB, logger)
			if err != nil {
				return err
			}

			application, err := app.New(cfg, storage, logger)
			if err != nil {
				storage.Close()
				return err
			}
			defer application.Close()

			link, err := application.Links.SetLinkActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s /%s is_active=%t\n", link.ID, link.ShortCode, link.IsActive)
			return nil
		},
	}
}
