package service

import (
	"context"
	"errors"

	"github.com/snake-leaderboard/internal/domain"
)

// CreatePlayer registers a new player. Username and email are checked
// before inserting; the unique constraints still decide concurrent races.
func (s *SnakeService) CreatePlayer(ctx context.Context, req domain.CreatePlayerRequest) (*domain.Player, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var player *domain.Player
	err := s.store.InTx(ctx, func(q Queries) error {
		if err := ensureAbsent(q.GetPlayerByUsername(ctx, req.Username)); err != nil {
			if errors.Is(err, errExists) {
				return domain.ErrUsernameTaken
			}
			return err
		}
		if err := ensureAbsent(q.GetPlayerByEmail(ctx, req.Email)); err != nil {
			if errors.Is(err, errExists) {
				return domain.ErrEmailTaken
			}
			return err
		}

		var err error
		player, err = q.CreatePlayer(ctx, req.Username, req.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player created", "player_id", player.ID, "username", player.Username)
	return player, nil
}

var errExists = errors.New("exists")

// ensureAbsent turns a successful lookup into errExists and a not-found into nil
func ensureAbsent(_ *domain.Player, err error) error {
	switch {
	case err == nil:
		return errExists
	case errors.Is(err, domain.ErrPlayerNotFound):
		return nil
	default:
		return err
	}
}

// GetPlayer returns a player by ID
func (s *SnakeService) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	var player *domain.Player
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		player, err = q.GetPlayer(ctx, id)
		return err
	})
	return player, err
}

// GetPlayerByUsername returns a player by username
func (s *SnakeService) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	var player *domain.Player
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		player, err = q.GetPlayerByUsername(ctx, username)
		return err
	})
	return player, err
}

// ListPlayers returns a page of players
func (s *SnakeService) ListPlayers(ctx context.Context, skip, limit int) ([]domain.Player, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}

	var players []domain.Player
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		players, err = q.ListPlayers(ctx, skip, limit)
		return err
	})
	return players, err
}

// DeletePlayer removes a player together with their games
func (s *SnakeService) DeletePlayer(ctx context.Context, username string) error {
	err := s.store.InTx(ctx, func(q Queries) error {
		player, err := q.GetPlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		return q.DeletePlayer(ctx, player.ID)
	})
	if err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("player deleted", "username", username)
	return nil
}

func validatePage(skip, limit int) error {
	var v domain.ValidationError
	if skip < 0 {
		v.Add("skip", "must be greater than or equal to 0")
	}
	if limit < 0 {
		v.Add("limit", "must be greater than or equal to 0")
	}
	if len(v.Fields) > 0 {
		return &v
	}
	return nil
}
