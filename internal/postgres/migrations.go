package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT players_username_key UNIQUE (username),
		CONSTRAINT players_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS levels (
		id BIGSERIAL PRIMARY KEY,
		level_number INT NOT NULL,
		name VARCHAR(50) NOT NULL,
		speed INT NOT NULL,
		obstacles_count INT NOT NULL DEFAULT 0,
		grid_size INT NOT NULL DEFAULT 20,
		CONSTRAINT levels_level_number_key UNIQUE (level_number),
		CONSTRAINT levels_level_number_check CHECK (level_number BETWEEN 1 AND 10),
		CONSTRAINT levels_speed_check CHECK (speed BETWEEN 50 AND 500),
		CONSTRAINT levels_obstacles_count_check CHECK (obstacles_count >= 0),
		CONSTRAINT levels_grid_size_check CHECK (grid_size BETWEEN 15 AND 40)
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id BIGSERIAL PRIMARY KEY,
		player_id BIGINT NOT NULL,
		level_id BIGINT NOT NULL,
		score BIGINT NOT NULL DEFAULT 0,
		food_eaten BIGINT NOT NULL DEFAULT 0,
		duration_seconds BIGINT NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT games_player_id_fkey FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE,
		CONSTRAINT games_level_id_fkey FOREIGN KEY (level_id) REFERENCES levels(id),
		CONSTRAINT games_results_check CHECK (score >= 0 AND food_eaten >= 0 AND duration_seconds >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_player_created ON games(player_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_games_level ON games(level_id)`,
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	for _, migration := range migrations {
		if _, err := r.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}
