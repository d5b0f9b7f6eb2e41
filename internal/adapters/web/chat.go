package web

import (
	"context"
	"encoding/json"
	"net/http"

	"invoice-dashboard/internal/vanna"
)

// ChatUpstream is the NL-to-SQL service facade consumed by the chat proxy.
type ChatUpstream interface {
	Ask(ctx context.Context, query string) (*vanna.Response, error)
}

type chatRequest struct {
	Query string `json:"query"`
}

// chatWithData handles POST /api/chat-with-data. It is a stateless
// passthrough: validate, forward, relay. Upstream failures are reported to
// the caller, never retried.
func (h *Handler) chatWithData(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("chat request decode failed")
		writeError(w, "Failed to process chat query", http.StatusInternalServerError)
		return
	}

	if req.Query == "" {
		writeError(w, "Query is required", http.StatusBadRequest)
		return
	}

	resp, err := h.chat.Ask(r.Context(), req.Query)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("chat upstream unreachable")
		writeError(w, "Failed to process chat query", http.StatusInternalServerError)
		return
	}

	if resp.Body == nil {
		h.log.Error().Int("upstream_status", resp.StatusCode).
			Str("request_id", requestIDFromContext(r.Context())).Msg("chat upstream returned error status")
		writeError(w, "Failed to process query with Vanna AI", resp.StatusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp.Body)
}
