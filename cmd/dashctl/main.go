// dashctl is the operational CLI for the invoice analytics dashboard:
// schema migrations, seed ingestion, and a store connectivity check.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"invoice-dashboard/internal/config"
	"invoice-dashboard/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "Operational tooling for the invoice analytics dashboard",
	Long: `dashctl manages the invoice analytics document store: applying schema
migrations, ingesting the upstream JSON export, and checking connectivity.

Configuration is read from the environment (and a local .env file if
present); DATABASE_URL is required for every subcommand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()
		return logger.Setup(cfg.LogLevel, cfg.LogFormat)
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd, seedCmd, checkDBCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
