package handler

import (
	"context"
	"errors"

	"github.com/snake-leaderboard/internal/domain"
)

var errNotImplemented = errors.New("not implemented")

// FakeService is a Service whose behaviour is set per test through Func fields
type FakeService struct {
	CreatePlayerFunc        func(ctx context.Context, req domain.CreatePlayerRequest) (*domain.Player, error)
	GetPlayerFunc           func(ctx context.Context, id int64) (*domain.Player, error)
	GetPlayerByUsernameFunc func(ctx context.Context, username string) (*domain.Player, error)
	ListPlayersFunc         func(ctx context.Context, skip, limit int) ([]domain.Player, error)
	ListLevelsFunc          func(ctx context.Context) ([]domain.Level, error)
	GetLevelFunc            func(ctx context.Context, id int64) (*domain.Level, error)
	GetLevelByNumberFunc    func(ctx context.Context, number int) (*domain.Level, error)
	CreateGameFunc          func(ctx context.Context, req domain.CreateGameRequest) (*domain.Game, error)
	GetGameFunc             func(ctx context.Context, id int64) (*domain.GameDetail, error)
	UpdateGameFunc          func(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error)
	ListPlayerGamesFunc     func(ctx context.Context, playerID int64, skip, limit int) ([]domain.GameDetail, error)
	LeaderboardFunc         func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	PingFunc                func(ctx context.Context) error
}

func (f *FakeService) CreatePlayer(ctx context.Context, req domain.CreatePlayerRequest) (*domain.Player, error) {
	if f.CreatePlayerFunc != nil {
		return f.CreatePlayerFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (f *FakeService) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (f *FakeService) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	if f.GetPlayerByUsernameFunc != nil {
		return f.GetPlayerByUsernameFunc(ctx, username)
	}
	return nil, errNotImplemented
}

func (f *FakeService) ListPlayers(ctx context.Context, skip, limit int) ([]domain.Player, error) {
	if f.ListPlayersFunc != nil {
		return f.ListPlayersFunc(ctx, skip, limit)
	}
	return nil, errNotImplemented
}

func (f *FakeService) ListLevels(ctx context.Context) ([]domain.Level, error) {
	if f.ListLevelsFunc != nil {
		return f.ListLevelsFunc(ctx)
	}
	return nil, errNotImplemented
}

func (f *FakeService) GetLevel(ctx context.Context, id int64) (*domain.Level, error) {
	if f.GetLevelFunc != nil {
		return f.GetLevelFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (f *FakeService) GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error) {
	if f.GetLevelByNumberFunc != nil {
		return f.GetLevelByNumberFunc(ctx, number)
	}
	return nil, errNotImplemented
}

func (f *FakeService) CreateGame(ctx context.Context, req domain.CreateGameRequest) (*domain.Game, error) {
	if f.CreateGameFunc != nil {
		return f.CreateGameFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (f *FakeService) GetGame(ctx context.Context, id int64) (*domain.GameDetail, error) {
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (f *FakeService) UpdateGame(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error) {
	if f.UpdateGameFunc != nil {
		return f.UpdateGameFunc(ctx, id, req)
	}
	return nil, errNotImplemented
}

func (f *FakeService) ListPlayerGames(ctx context.Context, playerID int64, skip, limit int) ([]domain.GameDetail, error) {
	if f.ListPlayerGamesFunc != nil {
		return f.ListPlayerGamesFunc(ctx, playerID, skip, limit)
	}
	return nil, errNotImplemented
}

func (f *FakeService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, limit)
	}
	return nil, errNotImplemented
}

func (f *FakeService) Ping(ctx context.Context) error {
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}
