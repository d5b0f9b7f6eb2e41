package web

import (
	"net/http"

	"github.com/gorilla/schema"

	"invoice-dashboard/internal/core"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// listInvoices handles GET /api/invoices.
// Query params: search, page, limit, sortBy, sortOrder.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var params core.ListInvoicesParams
	if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil {
		writeError(w, "invalid query parameters", http.StatusBadRequest)
		return
	}

	page, err := h.invoices.ListInvoices(r.Context(), params)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("invoice listing failed")
		writeError(w, "Failed to fetch invoices", http.StatusInternalServerError)
		return
	}
	writeJSON(w, page)
}
