package service

import (
	"context"
	"log/slog"

	"github.com/snake-leaderboard/internal/config"
)

// Default page sizes
const (
	DefaultPlayersLimit = 100
	DefaultHistoryLimit = 50
)

// SnakeService provides business logic for players, levels, games and
// the leaderboard. Every operation runs in a single Store transaction.
type SnakeService struct {
	store    Store
	config   *config.LeaderboardConfig
	logger   *slog.Logger
	cache    LeaderboardCache
	events   EventPublisher
	hub      Broadcaster
	recorder Recorder
}

// NewSnakeService creates a new service
func NewSnakeService(store Store, cfg *config.LeaderboardConfig, logger *slog.Logger) *SnakeService {
	return &SnakeService{
		store:    store,
		config:   cfg,
		logger:   logger,
		recorder: noopRecorder{},
	}
}

// SetCache enables the leaderboard read-through cache
func (s *SnakeService) SetCache(cache LeaderboardCache) {
	s.cache = cache
}

// SetPublisher enables game-finished event publishing
func (s *SnakeService) SetPublisher(events EventPublisher) {
	s.events = events
}

// SetHub sets the broadcaster for leaderboard updates
func (s *SnakeService) SetHub(hub Broadcaster) {
	s.hub = hub
}

// SetRecorder sets the metrics recorder
func (s *SnakeService) SetRecorder(recorder Recorder) {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	s.recorder = recorder
}

// Ping checks storage connectivity
func (s *SnakeService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
