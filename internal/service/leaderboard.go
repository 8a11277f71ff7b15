package service

import (
	"context"

	"github.com/snake-leaderboard/internal/domain"
)

// Leaderboard returns the top players by total score. The limit defaults
// to the configured default and is capped at the configured maximum.
func (s *SnakeService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = domain.ClampLimit(limit, s.config.DefaultLimit, s.config.MaxLimit)

	if s.cache == nil {
		return s.ComputeLeaderboard(ctx, limit)
	}

	entries, ok, err := s.cache.Top(ctx, limit)
	if err != nil {
		s.logger.Warn("failed to read leaderboard cache", "error", err)
	}
	if ok {
		s.recorder.LeaderboardCache(true)
		return entries, nil
	}
	s.recorder.LeaderboardCache(false)

	// Fill the cache with the largest page so every limit can be served from it
	full, err := s.fillCache(ctx)
	if err != nil {
		return nil, err
	}
	if len(full) > limit {
		full = full[:limit]
	}
	return full, nil
}

// ComputeLeaderboard ranks players straight from storage
func (s *SnakeService) ComputeLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var totals []domain.PlayerTotals
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		totals, err = q.Leaderboard(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return domain.RankEntries(totals), nil
}

// RefreshLeaderboard recomputes the snapshot, stores it in the cache and
// pushes the default page to subscribers
func (s *SnakeService) RefreshLeaderboard(ctx context.Context) error {
	var (
		full []domain.LeaderboardEntry
		err  error
	)
	if s.cache != nil {
		full, err = s.fillCache(ctx)
	} else {
		full, err = s.ComputeLeaderboard(ctx, s.config.MaxLimit)
	}
	if err != nil {
		return err
	}

	if s.hub != nil {
		top := full
		if len(top) > s.config.DefaultLimit {
			top = top[:s.config.DefaultLimit]
		}
		s.hub.BroadcastLeaderboard(top)
	}
	return nil
}

// fillCache computes the full snapshot and stores it unless the cache was
// invalidated while the snapshot was being computed
func (s *SnakeService) fillCache(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("failed to read leaderboard generation", "error", genErr)
	}

	full, err := s.ComputeLeaderboard(ctx, s.config.MaxLimit)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return full, nil
	}

	stored, err := s.cache.Store(ctx, gen, full)
	switch {
	case err != nil:
		s.logger.Warn("failed to store leaderboard cache", "error", err)
	case !stored:
		s.logger.Debug("leaderboard changed while computing, snapshot not cached", "generation", gen)
	}
	return full, nil
}

func (s *SnakeService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", "error", err)
	}
}
