package service

import (
	"context"

	"github.com/snake-leaderboard/internal/domain"
)

// LeaderboardCache holds a ranked snapshot of the leaderboard. Every
// Invalidate advances the generation; Store only writes when the
// generation still equals the one read before the snapshot was computed.
type LeaderboardCache interface {
	// Top returns the first n cached entries; ok is false on a miss
	Top(ctx context.Context, n int) (entries []domain.LeaderboardEntry, ok bool, err error)
	Generation(ctx context.Context) (int64, error)
	Store(ctx context.Context, gen int64, entries []domain.LeaderboardEntry) (stored bool, err error)
	Invalidate(ctx context.Context) error
}

// EventPublisher announces finished games
type EventPublisher interface {
	PublishGameFinished(ctx context.Context, event domain.GameFinishedEvent) error
}

// Broadcaster pushes leaderboard snapshots to connected clients
type Broadcaster interface {
	BroadcastLeaderboard(entries []domain.LeaderboardEntry)
}

// Recorder counts domain activity
type Recorder interface {
	GameCreated()
	GameFinished(completed bool)
	LeaderboardCache(hit bool)
}

type noopRecorder struct{}

func (noopRecorder) GameCreated()          {}
func (noopRecorder) GameFinished(bool)     {}
func (noopRecorder) LeaderboardCache(bool) {}
