package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound     = errors.New("Player not found")
	ErrLevelNotFound      = errors.New("Level not found")
	ErrGameNotFound       = errors.New("Game not found")
	ErrUsernameTaken      = errors.New("Username already registered")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidLevelNumber = errors.New("Level number must be between 1 and 10")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInternalError      = errors.New("Internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrLevelNotFound) ||
		errors.Is(err, ErrGameNotFound)
}

// IsConflictError checks if an error reports a uniqueness violation
func IsConflictError(err error) bool {
	return errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken)
}
