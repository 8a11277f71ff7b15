package handler

import (
	"net/http"

	"github.com/snake-leaderboard/internal/domain"
	"github.com/snake-leaderboard/internal/service"
)

// updateGameBody distinguishes missing result fields from zero values
type updateGameBody struct {
	Score           *int64 `json:"score"`
	FoodEaten       *int64 `json:"food_eaten"`
	DurationSeconds *int64 `json:"duration_seconds"`
	Completed       bool   `json:"completed"`
}

func (b *updateGameBody) request() (domain.UpdateGameRequest, error) {
	var v domain.ValidationError
	req := domain.UpdateGameRequest{Completed: b.Completed}
	for _, f := range []struct {
		name string
		src  *int64
		dst  *int64
	}{
		{"score", b.Score, &req.Score},
		{"food_eaten", b.FoodEaten, &req.FoodEaten},
		{"duration_seconds", b.DurationSeconds, &req.DurationSeconds},
	} {
		if f.src == nil {
			v.Add(f.name, "field required")
			continue
		}
		*f.dst = *f.src
	}
	if len(v.Fields) > 0 {
		return req, &v
	}
	return req, nil
}

// CreateGame starts a new game session
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, "create game", err)
		return
	}

	game, err := h.service.CreateGame(r.Context(), req)
	if err != nil {
		h.writeError(w, "create game", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, game)
}

// GetGame returns a game with its player and level
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "game_id")
	if err != nil {
		h.writeError(w, "get game", err)
		return
	}

	game, err := h.service.GetGame(r.Context(), id)
	if err != nil {
		h.writeError(w, "get game", err)
		return
	}

	h.writeJSON(w, http.StatusOK, game)
}

// UpdateGame records the results of a game
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "game_id")
	if err != nil {
		h.writeError(w, "update game", err)
		return
	}

	var body updateGameBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeError(w, "update game", err)
		return
	}
	req, err := body.request()
	if err != nil {
		h.writeError(w, "update game", err)
		return
	}

	game, err := h.service.UpdateGame(r.Context(), id, req)
	if err != nil {
		h.writeError(w, "update game", err)
		return
	}

	h.writeJSON(w, http.StatusOK, game)
}

// ListPlayerGames returns a player's game history
func (h *Handler) ListPlayerGames(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "player_id")
	if err != nil {
		h.writeError(w, "list player games", err)
		return
	}

	var v domain.ValidationError
	skip := queryInt(r, "skip", 0, &v)
	limit := queryInt(r, "limit", service.DefaultHistoryLimit, &v)
	if len(v.Fields) > 0 {
		h.writeError(w, "list player games", &v)
		return
	}

	games, err := h.service.ListPlayerGames(r.Context(), playerID, skip, limit)
	if err != nil {
		h.writeError(w, "list player games", err)
		return
	}

	h.writeJSON(w, http.StatusOK, games)
}
