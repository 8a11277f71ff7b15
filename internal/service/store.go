package service

import (
	"context"

	"github.com/snake-leaderboard/internal/domain"
	"github.com/snake-leaderboard/internal/postgres"
)

// Queries is the record access surface used inside a unit of work
type Queries interface {
	CreatePlayer(ctx context.Context, username, email string) (*domain.Player, error)
	GetPlayer(ctx context.Context, id int64) (*domain.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error)
	GetPlayerByEmail(ctx context.Context, email string) (*domain.Player, error)
	ListPlayers(ctx context.Context, offset, limit int) ([]domain.Player, error)
	DeletePlayer(ctx context.Context, id int64) error

	CreateLevel(ctx context.Context, req domain.CreateLevelRequest) (*domain.Level, error)
	GetLevel(ctx context.Context, id int64) (*domain.Level, error)
	GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error)
	ListLevels(ctx context.Context) ([]domain.Level, error)
	CountLevels(ctx context.Context) (int64, error)
	LockLevels(ctx context.Context) error

	CreateGame(ctx context.Context, playerID, levelID int64) (*domain.Game, error)
	UpdateGame(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error)
	GetGame(ctx context.Context, id int64) (*domain.Game, error)
	GetGameDetail(ctx context.Context, id int64) (*domain.GameDetail, error)
	ListPlayerGames(ctx context.Context, playerID int64, offset, limit int) ([]domain.GameDetail, error)

	Leaderboard(ctx context.Context, limit int) ([]domain.PlayerTotals, error)
}

// Store runs units of work against the database
type Store interface {
	// InTx runs fn in one transaction, committing only when fn returns nil
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
}

// postgresStore adapts *postgres.Repository to Store
type postgresStore struct {
	repo *postgres.Repository
}

// NewPostgresStore wraps a PostgreSQL repository
func NewPostgresStore(repo *postgres.Repository) Store {
	return &postgresStore{repo: repo}
}

func (s *postgresStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	return s.repo.InTx(ctx, func(q *postgres.Queries) error {
		return fn(q)
	})
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
