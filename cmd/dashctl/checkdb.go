package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"invoice-dashboard/internal/db"
	"invoice-dashboard/internal/logger"
)

var checkDBCmd = &cobra.Command{
	Use:   "check-db",
	Short: "Verify store connectivity and report basic counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("check-db")
		ctx := cmd.Context()

		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		var dbTime time.Time
		if err := pool.QueryRow(ctx, "SELECT NOW()").Scan(&dbTime); err != nil {
			return fmt.Errorf("failed to query database time: %w", err)
		}

		var documents, invoices, lineItems int
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&documents); err != nil {
			return fmt.Errorf("failed to count documents: %w", err)
		}
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices").Scan(&invoices); err != nil {
			return fmt.Errorf("failed to count invoices: %w", err)
		}
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM line_items").Scan(&lineItems); err != nil {
			return fmt.Errorf("failed to count line items: %w", err)
		}

		log.Info().
			Time("database_time", dbTime).
			Int("documents", documents).
			Int("invoices", invoices).
			Int("line_items", lineItems).
			Msg("store reachable")
		return nil
	},
}
