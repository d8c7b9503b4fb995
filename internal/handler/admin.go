package handler

import (
	"log/slog"
	"net/http"

	"github.com/pavelanni/dreamroute/internal/analytics"
	"github.com/pavelanni/dreamroute/internal/handler/views"
)

func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	tbl, err := h.log.ReadAll()
	if err != nil {
		slog.Error("failed to read response log", "path", h.log.Path(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var summary *analytics.Summary
	if h.analytics != nil && len(tbl.Rows) > 0 {
		s, err := h.analytics.Summarize(r.Context(), h.log.Path())
		if err != nil {
			slog.Warn("response summary unavailable", "error", err)
		} else {
			summary = &s
		}
	}
	render(w, r, http.StatusOK, views.AdminPage(tbl, summary))
}
