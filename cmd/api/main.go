package main

import (
	"fmt"
	"os"

	"github.com/SergeiKhy/link-tracker/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var port string

	root := &cobra.Command{
		Use:   "link-tracker",
		Short: "URL shortener with per-user links and click analytics",
		// Без подкоманды запускаем сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&port, "port", "", "HTTP port (overrides APP_PORT)")

	root.AddCommand(
		newServeCmd(&port),
		newMigrateCmd(),
		newLinkCmd(),
	)

	return root
}

// bootstrap загружает конфиг и создаёт логгер
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return cfg, logger, nil
}
