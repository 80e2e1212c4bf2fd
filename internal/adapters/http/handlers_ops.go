package web

import (
	"net/http"
	"time"
)

// handleHealth serves GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handlePerf serves GET /debug/perf?window=15m with a timing snapshot.
func (h *Handler) handlePerf(w http.ResponseWriter, r *http.Request) {
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSONError(w, http.StatusBadRequest, "window must be a positive duration")
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, h.deps.Perf.Snapshot(h.deps.Now().Add(-window), 20))
}
