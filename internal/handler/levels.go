package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/snake-leaderboard/internal/domain"
)

// ListLevels returns all levels
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.ListLevels(r.Context())
	if err != nil {
		h.writeError(w, "list levels", err)
		return
	}

	h.writeJSON(w, http.StatusOK, levels)
}

// GetLevel returns a level by ID
func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "level_id")
	if err != nil {
		h.writeError(w, "get level", err)
		return
	}

	level, err := h.service.GetLevel(r.Context(), id)
	if err != nil {
		h.writeError(w, "get level", err)
		return
	}

	h.writeJSON(w, http.StatusOK, level)
}

// GetLevelByNumber returns a level by its number
func (h *Handler) GetLevelByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "level_number"))
	if err != nil {
		var v domain.ValidationError
		v.Add("level_number", "must be a valid integer")
		h.writeError(w, "get level by number", &v)
		return
	}

	level, err := h.service.GetLevelByNumber(r.Context(), number)
	if err != nil {
		h.writeError(w, "get level by number", err)
		return
	}

	h.writeJSON(w, http.StatusOK, level)
}
