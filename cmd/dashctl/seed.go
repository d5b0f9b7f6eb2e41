package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoice-dashboard/internal/db"
	"invoice-dashboard/internal/ingest"
	"invoice-dashboard/internal/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed [export-file]",
	Short: "Ingest an upstream JSON export into the document store",
	Long: `seed reads a JSON export produced by the document-extraction pipeline
and upserts its records into the store. The job is idempotent per document
(re-running it is safe), but two seed runs must not execute concurrently
against the same store: no lock is taken.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("seed")
		ctx := cmd.Context()

		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open export file: %w", err)
		}
		defer f.Close()

		result, err := ingest.New(pool).Run(ctx, f)
		if err != nil {
			return err
		}

		log.Info().
			Int("processed", result.Processed).
			Int("errors", result.Errored).
			Msg("seed finished")
		if result.Errored > 0 {
			return fmt.Errorf("%d record(s) failed to ingest", result.Errored)
		}
		return nil
	},
}
