package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"invoice-dashboard/internal/config"
	"invoice-dashboard/internal/core"
	"invoice-dashboard/internal/logger"
)

// Handler holds the aggregation services, the chat upstream, and the pool
// used by the diagnostic endpoint. Everything is injected; there is no
// ambient shared state.
type Handler struct {
	analytics core.AnalyticsService
	invoices  core.InvoiceService
	chat      ChatUpstream
	pool      *pgxpool.Pool
	cfg       *config.Config
	log       zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(analytics core.AnalyticsService, invoices core.InvoiceService, chat ChatUpstream, pool *pgxpool.Pool, cfg *config.Config) http.Handler {
	h := &Handler{
		analytics: analytics,
		invoices:  invoices,
		chat:      chat,
		pool:      pool,
		cfg:       cfg,
		log:       logger.WithComponent("web"),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/api/health", h.health)
	r.Get("/api/test-db-connection", h.testDBConnection)

	// Aggregation endpoints: read-only, no auth layer (trusted network).
	r.Get("/api/stats", h.stats)
	r.Get("/api/invoice-trends", h.invoiceTrends)
	r.Get("/api/vendors/top10", h.topVendors)
	r.Get("/api/category-spend", h.categorySpend)
	r.Get("/api/cash-outflow", h.cashOutflow)
	r.Get("/api/invoices", h.listInvoices)

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB
		r.Post("/api/chat-with-data", h.chatWithData)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}
