package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoice-dashboard/internal/db"
	"invoice-dashboard/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}

		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}
