package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/snake-leaderboard/internal/config"
)

// Refresher rebuilds the cached leaderboard and pushes it to subscribers
type Refresher interface {
	RefreshLeaderboard(ctx context.Context) error
}

// LeaderboardRefresher periodically recomputes the leaderboard from PostgreSQL
type LeaderboardRefresher struct {
	service Refresher
	config  *config.RefreshConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewLeaderboardRefresher creates a new refresher
func NewLeaderboardRefresher(service Refresher, cfg *config.RefreshConfig, logger *slog.Logger) *LeaderboardRefresher {
	return &LeaderboardRefresher{
		service: service,
		config:  cfg,
		logger:  logger,
	}
}

// Start begins the background refresh loop
func (w *LeaderboardRefresher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	w.logger.Info("leaderboard refresher started", "interval", w.config.Interval)

	go w.run(ctx, w.stopCh, w.doneCh)
	return nil
}

// Stop stops the background refresh loop and waits for it to exit
func (w *LeaderboardRefresher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	w.logger.Info("leaderboard refresher stopped")
	return nil
}

func (w *LeaderboardRefresher) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single refresh cycle
func (w *LeaderboardRefresher) RunOnce(ctx context.Context) {
	startTime := time.Now()

	if err := w.service.RefreshLeaderboard(ctx); err != nil {
		w.logger.Error("failed to refresh leaderboard", "error", err)
		return
	}

	w.logger.Debug("leaderboard refreshed", "duration", time.Since(startTime))
}

// IsRunning returns whether the refresher is currently running
func (w *LeaderboardRefresher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
