package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "invoice-dashboard/internal/adapters/web"
	"invoice-dashboard/internal/config"
	"invoice-dashboard/internal/core"
	"invoice-dashboard/internal/db"
	"invoice-dashboard/internal/logger"
	"invoice-dashboard/internal/vanna"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.WithComponent("server")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	analytics := core.NewAnalyticsService(pool)
	invoices := core.NewInvoiceService(pool)
	chat := vanna.New(cfg.VannaBaseURL, cfg.VannaAPIKey, cfg.VannaTimeout)

	handler := webAdapter.NewHandler(analytics, invoices, chat, pool, cfg)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
