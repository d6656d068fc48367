package main

import (
	"context"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/app"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
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
			defer storage.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := storage.Migrate(ctx); err != nil {
				return err
			}

			logger.Info("Database migrations applied")
			return nil
		},
	}
}
