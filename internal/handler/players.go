package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/snake-leaderboard/internal/domain"
	"github.com/snake-leaderboard/internal/service"
)

// CreatePlayer registers a new player
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlayerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, "create player", err)
		return
	}

	player, err := h.service.CreatePlayer(r.Context(), req)
	if err != nil {
		h.writeError(w, "create player", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, player)
}

// ListPlayers returns a page of players
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	var v domain.ValidationError
	skip := queryInt(r, "skip", 0, &v)
	limit := queryInt(r, "limit", service.DefaultPlayersLimit, &v)
	if len(v.Fields) > 0 {
		h.writeError(w, "list players", &v)
		return
	}

	players, err := h.service.ListPlayers(r.Context(), skip, limit)
	if err != nil {
		h.writeError(w, "list players", err)
		return
	}

	h.writeJSON(w, http.StatusOK, players)
}

// GetPlayer returns a player by ID
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "player_id")
	if err != nil {
		h.writeError(w, "get player", err)
		return
	}

	player, err := h.service.GetPlayer(r.Context(), id)
	if err != nil {
		h.writeError(w, "get player", err)
		return
	}

	h.writeJSON(w, http.StatusOK, player)
}

// GetPlayerByUsername returns a player by username
func (h *Handler) GetPlayerByUsername(w http.ResponseWriter, r *http.Request) {
	player, err := h.service.GetPlayerByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, "get player by username", err)
		return
	}

	h.writeJSON(w, http.StatusOK, player)
}
