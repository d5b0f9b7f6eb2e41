package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// testDBConnection handles GET /api/test-db-connection, a diagnostic
// endpoint for verifying store connectivity and DSN normalization. Failure
// detail is included only in development mode.
func (h *Handler) testDBConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fail := func(err error) {
		h.log.Error().Err(err).Msg("database connectivity check failed")
		resp := map[string]any{
			"status":    "error",
			"error":     "database connectivity check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if h.cfg.Environment == "development" {
			resp["detail"] = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(resp)
	}

	var dbTime time.Time
	if err := h.pool.QueryRow(ctx, "SELECT NOW()").Scan(&dbTime); err != nil {
		fail(err)
		return
	}

	rows, err := h.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		LIMIT 5`)
	if err != nil {
		fail(err)
		return
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			fail(err)
			return
		}
		tableNames = append(tableNames, name)
	}
	if err := rows.Err(); err != nil {
		fail(err)
		return
	}

	var documentCount int
	if err := h.pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&documentCount); err != nil {
		fail(err)
		return
	}

	writeJSON(w, map[string]any{
		"status":         "success",
		"connection":     "working",
		"urlTransformed": !strings.HasPrefix(h.cfg.DatabaseURL, "postgresql+psycopg://"),
		"urlPreview":     dsnPreview(h.cfg.DatabaseURL),
		"databaseTime":   dbTime,
		"tablesFound":    len(tableNames),
		"tableNames":     tableNames,
		"documentCount":  documentCount,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// dsnPreview truncates a connection string for diagnostics without exposing
// the full credential.
func dsnPreview(dsn string) string {
	if len(dsn) <= 30 {
		return dsn + "..."
	}
	return dsn[:30] + "..."
}
