package main

import (
	"collection-route-service/internal/config"
	"collection-route-service/internal/platform/logger"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	dotenv := config.LoadDotEnv()

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Operator tasks for the collection route service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Env)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if !dotenv {
				log.Debug("no .env file found (using environment variables)")
			}
			return nil
		},
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newPlanCmd())

	if err := root.Execute(); err != nil {
		zap.L().Error("dbtool failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
