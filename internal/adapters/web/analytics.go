package web

import "net/http"

// The five aggregation handlers share one shape: call the service, log the
// failure server-side, surface a generic error to the caller.

// stats handles GET /api/stats.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.analytics.GetStats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("stats query failed")
		writeError(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// invoiceTrends handles GET /api/invoice-trends.
func (h *Handler) invoiceTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.analytics.GetInvoiceTrends(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("invoice trends query failed")
		writeError(w, "Failed to fetch invoice trends", http.StatusInternalServerError)
		return
	}
	writeJSON(w, trends)
}

// topVendors handles GET /api/vendors/top10.
func (h *Handler) topVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.analytics.GetTopVendors(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("top vendors query failed")
		writeError(w, "Failed to fetch top vendors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, vendors)
}

// categorySpend handles GET /api/category-spend.
func (h *Handler) categorySpend(w http.ResponseWriter, r *http.Request) {
	categories, err := h.analytics.GetCategorySpend(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("category spend query failed")
		writeError(w, "Failed to fetch category spend", http.StatusInternalServerError)
		return
	}
	writeJSON(w, categories)
}

// cashOutflow handles GET /api/cash-outflow.
func (h *Handler) cashOutflow(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.analytics.GetCashOutflow(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("cash outflow query failed")
		writeError(w, "Failed to fetch cash outflow", http.StatusInternalServerError)
		return
	}
	writeJSON(w, buckets)
}
