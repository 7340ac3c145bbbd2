package handlers

import (
	"net/http"
	"strconv"

	"github.com/cartdanawa/pricescan/internal/store"
)

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, "Scan history is not configured", http.StatusNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, "Failed to load history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []store.ScanEntry{}
	}
	h.writeJSON(w, entries)
}
