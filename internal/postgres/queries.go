package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snake-leaderboard/internal/domain"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries implements record access for players, levels and games
type Queries struct {
	db DBTX
}

// NewQueries binds queries to a pool or transaction
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const (
	playerColumns = `id, username, email, created_at`
	levelColumns  = `id, level_number, name, speed, obstacles_count, grid_size`
	gameColumns   = `id, player_id, level_id, score, food_eaten, duration_seconds, completed, created_at`

	gameDetailSelect = `
		SELECT g.id, g.player_id, g.level_id, g.score, g.food_eaten, g.duration_seconds, g.completed, g.created_at,
			   p.id, p.username, p.email, p.created_at,
			   l.id, l.level_number, l.name, l.speed, l.obstacles_count, l.grid_size
		FROM games g
		JOIN players p ON p.id = g.player_id
		JOIN levels l ON l.id = g.level_id
	`
)

// ========== Players ==========

// CreatePlayer inserts a new player
func (q *Queries) CreatePlayer(ctx context.Context, username, email string) (*domain.Player, error) {
	query := `
		INSERT INTO players (username, email)
		VALUES ($1, $2)
		RETURNING ` + playerColumns
	player, err := scanPlayer(q.db.QueryRow(ctx, query, username, email))
	if err != nil {
		if derr := translateError(err); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return player, nil
}

// GetPlayer retrieves a player by ID
func (q *Queries) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return q.getPlayer(ctx, query, id)
}

// GetPlayerByUsername retrieves a player by username
func (q *Queries) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE username = $1`
	return q.getPlayer(ctx, query, username)
}

// GetPlayerByEmail retrieves a player by email
func (q *Queries) GetPlayerByEmail(ctx context.Context, email string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE email = $1`
	return q.getPlayer(ctx, query, email)
}

func (q *Queries) getPlayer(ctx context.Context, query string, arg any) (*domain.Player, error) {
	player, err := scanPlayer(q.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return player, nil
}

// ListPlayers retrieves players with pagination
func (q *Queries) ListPlayers(ctx context.Context, offset, limit int) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := q.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := make([]domain.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, *player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player; their games are removed by cascade
func (q *Queries) DeletePlayer(ctx context.Context, id int64) error {
	result, err := q.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// ========== Levels ==========

// CreateLevel inserts a new level
func (q *Queries) CreateLevel(ctx context.Context, req domain.CreateLevelRequest) (*domain.Level, error) {
	query := `
		INSERT INTO levels (level_number, name, speed, obstacles_count, grid_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + levelColumns
	level, err := scanLevel(q.db.QueryRow(ctx, query,
		req.LevelNumber,
		req.Name,
		req.Speed,
		req.ObstaclesCount,
		req.GridSize,
	))
	if err != nil {
		return nil, fmt.Errorf("creating level: %w", err)
	}
	return level, nil
}

// GetLevel retrieves a level by ID
func (q *Queries) GetLevel(ctx context.Context, id int64) (*domain.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = $1`
	return q.getLevel(ctx, query, id)
}

// GetLevelByNumber retrieves a level by its 1-10 number
func (q *Queries) GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE level_number = $1`
	return q.getLevel(ctx, query, number)
}

func (q *Queries) getLevel(ctx context.Context, query string, arg any) (*domain.Level, error) {
	level, err := scanLevel(q.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLevelNotFound
		}
		return nil, fmt.Errorf("getting level: %w", err)
	}
	return level, nil
}

// ListLevels retrieves all levels ordered by level number
func (q *Queries) ListLevels(ctx context.Context) ([]domain.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels ORDER BY level_number ASC`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	defer rows.Close()

	levels := make([]domain.Level, 0, domain.MaxLevelNumber)
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning level: %w", err)
		}
		levels = append(levels, *level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	return levels, nil
}

// CountLevels returns the number of stored levels
func (q *Queries) CountLevels(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM levels`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting levels: %w", err)
	}
	return count, nil
}

// LockLevels serialises concurrent seeders until the transaction ends
func (q *Queries) LockLevels(ctx context.Context) error {
	if _, err := q.db.Exec(ctx, `LOCK TABLE levels IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("locking levels: %w", err)
	}
	return nil
}

// ========== Games ==========

// CreateGame starts an unplayed game with default results
func (q *Queries) CreateGame(ctx context.Context, playerID, levelID int64) (*domain.Game, error) {
	query := `
		INSERT INTO games (player_id, level_id)
		VALUES ($1, $2)
		RETURNING ` + gameColumns
	game, err := scanGame(q.db.QueryRow(ctx, query, playerID, levelID))
	if err != nil {
		if derr := translateError(err); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("creating game: %w", err)
	}
	return game, nil
}

// UpdateGame overwrites all result fields of a game in one statement
func (q *Queries) UpdateGame(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error) {
	query := `
		UPDATE games
		SET score = $2, food_eaten = $3, duration_seconds = $4, completed = $5
		WHERE id = $1
		RETURNING ` + gameColumns
	game, err := scanGame(q.db.QueryRow(ctx, query,
		id,
		req.Score,
		req.FoodEaten,
		req.DurationSeconds,
		req.Completed,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("updating game: %w", err)
	}
	return game, nil
}

// GetGame retrieves a game by ID
func (q *Queries) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	game, err := scanGame(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return game, nil
}

// GetGameDetail retrieves a game joined with its player and level
func (q *Queries) GetGameDetail(ctx context.Context, id int64) (*domain.GameDetail, error) {
	query := gameDetailSelect + ` WHERE g.id = $1`
	detail, err := scanGameDetail(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game detail: %w", err)
	}
	return detail, nil
}

// ListPlayerGames retrieves a player's games, newest first
func (q *Queries) ListPlayerGames(ctx context.Context, playerID int64, offset, limit int) ([]domain.GameDetail, error) {
	query := gameDetailSelect + `
		WHERE g.player_id = $1
		ORDER BY g.created_at DESC, g.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.db.Query(ctx, query, playerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing player games: %w", err)
	}
	defer rows.Close()

	games := make([]domain.GameDetail, 0)
	for rows.Next() {
		detail, err := scanGameDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing player games: %w", err)
	}
	return games, nil
}

// ========== Leaderboard ==========

// Leaderboard aggregates games per player, highest total score first.
// The inner joins drop players without games.
func (q *Queries) Leaderboard(ctx context.Context, limit int) ([]domain.PlayerTotals, error) {
	query := `
		SELECT p.id,
			   p.username,
			   SUM(g.score)::BIGINT AS total_score,
			   COUNT(g.id) AS games_played,
			   MAX(l.level_number) AS highest_level
		FROM players p
		JOIN games g ON g.player_id = p.id
		JOIN levels l ON l.id = g.level_id
		GROUP BY p.id, p.username
		ORDER BY total_score DESC, p.id ASC
		LIMIT $1
	`
	rows, err := q.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("computing leaderboard: %w", err)
	}
	defer rows.Close()

	totals := make([]domain.PlayerTotals, 0, limit)
	for rows.Next() {
		var t domain.PlayerTotals
		if err := rows.Scan(&t.PlayerID, &t.Username, &t.TotalScore, &t.GamesPlayed, &t.HighestLevel); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computing leaderboard: %w", err)
	}
	return totals, nil
}

// ========== Scanners ==========

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanLevel(row pgx.Row) (*domain.Level, error) {
	var l domain.Level
	if err := row.Scan(&l.ID, &l.LevelNumber, &l.Name, &l.Speed, &l.ObstaclesCount, &l.GridSize); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	err := row.Scan(
		&g.ID,
		&g.PlayerID,
		&g.LevelID,
		&g.Score,
		&g.FoodEaten,
		&g.DurationSeconds,
		&g.Completed,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGameDetail(row pgx.Row) (*domain.GameDetail, error) {
	var d domain.GameDetail
	err := row.Scan(
		&d.ID,
		&d.PlayerID,
		&d.LevelID,
		&d.Score,
		&d.FoodEaten,
		&d.DurationSeconds,
		&d.Completed,
		&d.CreatedAt,
		&d.Player.ID,
		&d.Player.Username,
		&d.Player.Email,
		&d.Player.CreatedAt,
		&d.Level.ID,
		&d.Level.LevelNumber,
		&d.Level.Name,
		&d.Level.Speed,
		&d.Level.ObstaclesCount,
		&d.Level.GridSize,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
