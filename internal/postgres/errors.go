package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snake-leaderboard/internal/domain"
)

// PostgreSQL SQLSTATE codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// constraintErrors maps named constraints onto domain errors
var constraintErrors = map[string]error{
	"players_username_key": domain.ErrUsernameTaken,
	"players_email_key":    domain.ErrEmailTaken,
	"games_player_id_fkey": domain.ErrPlayerNotFound,
	"games_level_id_fkey":  domain.ErrLevelNotFound,
}

// translateError converts constraint violations into domain errors.
// It returns nil when err is not a known violation.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	if pgErr.Code != codeUniqueViolation && pgErr.Code != codeForeignKeyViolation {
		return nil
	}
	return constraintErrors[pgErr.ConstraintName]
}
