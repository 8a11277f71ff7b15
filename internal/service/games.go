package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/snake-leaderboard/internal/domain"
)

// CreateGame starts a game session for an existing player and level
func (s *SnakeService) CreateGame(ctx context.Context, req domain.CreateGameRequest) (*domain.Game, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var game *domain.Game
	err := s.store.InTx(ctx, func(q Queries) error {
		if _, err := q.GetPlayer(ctx, req.PlayerID); err != nil {
			return err
		}
		if _, err := q.GetLevel(ctx, req.LevelID); err != nil {
			return err
		}

		var err error
		game, err = q.CreateGame(ctx, req.PlayerID, req.LevelID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.GameCreated()
	return game, nil
}

// GetGame returns a game with its player and level
func (s *SnakeService) GetGame(ctx context.Context, id int64) (*domain.GameDetail, error) {
	var detail *domain.GameDetail
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		detail, err = q.GetGameDetail(ctx, id)
		return err
	})
	return detail, err
}

// UpdateGame records the final results of a game
func (s *SnakeService) UpdateGame(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var game *domain.Game
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		game, err = q.UpdateGame(ctx, id, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.GameFinished(game.Completed)
	s.afterGameFinished(ctx, game)
	return game, nil
}

// afterGameFinished runs the side channels of a committed result.
// Failures are logged and never change the request outcome.
func (s *SnakeService) afterGameFinished(ctx context.Context, game *domain.Game) {
	s.invalidateCache(ctx)

	if s.events != nil {
		event := domain.GameFinishedEvent{
			EventID:    uuid.New().String(),
			GameID:     game.ID,
			PlayerID:   game.PlayerID,
			LevelID:    game.LevelID,
			Score:      game.Score,
			Completed:  game.Completed,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.events.PublishGameFinished(ctx, event); err != nil {
			s.logger.Warn("failed to publish game finished event", "game_id", game.ID, "error", err)
		}
	}

	if s.hub != nil {
		entries, err := s.ComputeLeaderboard(ctx, s.config.DefaultLimit)
		if err != nil {
			s.logger.Warn("failed to compute leaderboard for broadcast", "error", err)
			return
		}
		s.hub.BroadcastLeaderboard(entries)
	}
}

// ListPlayerGames returns a player's game history, newest first
func (s *SnakeService) ListPlayerGames(ctx context.Context, playerID int64, skip, limit int) ([]domain.GameDetail, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}

	var games []domain.GameDetail
	err := s.store.InTx(ctx, func(q Queries) error {
		if _, err := q.GetPlayer(ctx, playerID); err != nil {
			return err
		}
		var err error
		games, err = q.ListPlayerGames(ctx, playerID, skip, limit)
		return err
	})
	return games, err
}

// ApplyGameResults records a batch of asynchronously submitted results.
// Each result is its own unit of work; failures are logged and skipped.
func (s *SnakeService) ApplyGameResults(ctx context.Context, results []domain.GameResultMessage) int {
	applied := 0
	for _, result := range results {
		if _, err := s.UpdateGame(ctx, result.GameID, result.UpdateGameRequest); err != nil {
			s.logger.Error("failed to apply game result",
				"game_id", result.GameID,
				"error", err,
			)
			continue
		}
		applied++
	}
	return applied
}
