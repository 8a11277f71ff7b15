package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/snake-leaderboard/internal/config"
	"github.com/snake-leaderboard/internal/domain"
	"github.com/snake-leaderboard/internal/metrics"
	"github.com/snake-leaderboard/internal/websocket"
)

const maxBodyBytes = 1 << 20

// Service is the business logic the HTTP layer depends on
type Service interface {
	CreatePlayer(ctx context.Context, req domain.CreatePlayerRequest) (*domain.Player, error)
	GetPlayer(ctx context.Context, id int64) (*domain.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error)
	ListPlayers(ctx context.Context, skip, limit int) ([]domain.Player, error)

	ListLevels(ctx context.Context) ([]domain.Level, error)
	GetLevel(ctx context.Context, id int64) (*domain.Level, error)
	GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error)

	CreateGame(ctx context.Context, req domain.CreateGameRequest) (*domain.Game, error)
	GetGame(ctx context.Context, id int64) (*domain.GameDetail, error)
	UpdateGame(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error)
	ListPlayerGames(ctx context.Context, playerID int64, skip, limit int) ([]domain.GameDetail, error)

	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)

	Ping(ctx context.Context) error
}

// Handler provides HTTP handlers for the Snake game API
type Handler struct {
	service Service
	hub     *websocket.Hub
	metrics *metrics.Metrics
	config  *config.Config
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler. hub and m may be nil, in which
// case the websocket and metrics routes are not mounted.
func NewHandler(service Service, hub *websocket.Hub, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		metrics: m,
		config:  cfg,
		logger:  logger,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	r.Use(middleware.Compress(5))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
	})

	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)
	r.Get("/openapi.yaml", h.OpenAPI)
	r.Get("/docs", h.Docs)
	r.Get("/redoc", h.Redoc)

	if h.hub != nil {
		r.Get("/ws", h.HandleWebSocket)
		r.Get("/ws/stats", h.GetWebSocketStats)
	}
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/players", func(r chi.Router) {
		r.Post("/", h.CreatePlayer)
		r.Get("/", h.ListPlayers)
		r.Get("/username/{username}", h.GetPlayerByUsername)
		r.Get("/{player_id}", h.GetPlayer)
	})

	r.Route("/levels", func(r chi.Router) {
		r.Get("/", h.ListLevels)
		r.Get("/number/{level_number}", h.GetLevelByNumber)
		r.Get("/{level_id}", h.GetLevel)
	})

	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.CreateGame)
		r.Get("/player/{player_id}/history", h.ListPlayerGames)
		r.Get("/{game_id}", h.GetGame)
		r.Put("/{game_id}", h.UpdateGame)
	})

	r.Get("/leaderboard", h.GetLeaderboard)

	return r
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError maps a service error onto its status code and detail body.
// Anything unrecognised is logged and hidden behind a 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: verr.Fields})
	case errors.Is(err, domain.ErrInvalidLevelNumber), domain.IsConflictError(err):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	case domain.IsNotFoundError(err):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: err.Error()})
	default:
		h.logger.Error("request failed", "op", op, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: domain.ErrInternalError.Error()})
	}
}

// decodeJSON reads the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var verr domain.ValidationError
		if errors.Is(err, io.EOF) {
			verr.Add("body", "field required")
		} else {
			verr.Add("body", fmt.Sprintf("invalid JSON: %v", err))
		}
		return &verr
	}
	return nil
}

// pathID parses an integer path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		var v domain.ValidationError
		v.Add(name, "must be a valid integer")
		return 0, &v
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, def int, v *domain.ValidationError) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(name, "must be a valid integer")
		return def
	}
	return n
}

// Root returns API information
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Snake Game API",
		"version": h.config.App.Version,
		"docs":    "/docs",
		"redoc":   "/redoc",
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck reports whether the database is reachable
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{
		"total_connections":       h.hub.TotalConnections(),
		"leaderboard_subscribers": h.hub.SubscriberCount(websocket.ChannelLeaderboard),
	})
}
