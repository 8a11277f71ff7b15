package handler

import (
	"net/http"

	"github.com/snake-leaderboard/internal/domain"
)

// GetLeaderboard returns the top players by total score
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	var v domain.ValidationError
	limit := queryInt(r, "limit", h.config.Leaderboard.DefaultLimit, &v)
	if len(v.Fields) > 0 {
		h.writeError(w, "get leaderboard", &v)
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.writeError(w, "get leaderboard", err)
		return
	}

	h.writeJSON(w, http.StatusOK, entries)
}
