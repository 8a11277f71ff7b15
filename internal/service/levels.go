package service

import (
	"context"
	"fmt"

	"github.com/snake-leaderboard/internal/domain"
)

// ListLevels returns all levels ordered by level number
func (s *SnakeService) ListLevels(ctx context.Context) ([]domain.Level, error) {
	var levels []domain.Level
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		levels, err = q.ListLevels(ctx)
		return err
	})
	return levels, err
}

// GetLevel returns a level by ID
func (s *SnakeService) GetLevel(ctx context.Context, id int64) (*domain.Level, error) {
	var level *domain.Level
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		level, err = q.GetLevel(ctx, id)
		return err
	})
	return level, err
}

// GetLevelByNumber returns a level by its number. Numbers outside 1-10
// are rejected without touching storage.
func (s *SnakeService) GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error) {
	if !domain.ValidLevelNumber(number) {
		return nil, domain.ErrInvalidLevelNumber
	}

	var level *domain.Level
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		level, err = q.GetLevelByNumber(ctx, number)
		return err
	})
	return level, err
}

// SeedLevels inserts the default levels unless any level already exists.
// It returns the number of levels inserted.
func (s *SnakeService) SeedLevels(ctx context.Context) (int, error) {
	inserted := 0
	err := s.store.InTx(ctx, func(q Queries) error {
		if err := q.LockLevels(ctx); err != nil {
			return err
		}
		count, err := q.CountLevels(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			s.logger.Info("levels already initialized", "count", count)
			return nil
		}

		for _, req := range domain.DefaultLevels {
			if err := req.Validate(); err != nil {
				return fmt.Errorf("level %d: %w", req.LevelNumber, err)
			}
			level, err := q.CreateLevel(ctx, req)
			if err != nil {
				return err
			}
			s.logger.Debug("level created", "level_number", level.LevelNumber, "name", level.Name)
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding levels: %w", err)
	}

	if inserted > 0 {
		s.logger.Info("levels initialized", "count", inserted)
	}
	return inserted, nil
}
