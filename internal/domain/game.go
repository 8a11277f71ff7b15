package domain

import "time"

// Game represents one play session of a player on a level
type Game struct {
	ID              int64     `json:"id"`
	PlayerID        int64     `json:"player_id"`
	LevelID         int64     `json:"level_id"`
	Score           int64     `json:"score"`
	FoodEaten       int64     `json:"food_eaten"`
	DurationSeconds int64     `json:"duration_seconds"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
}

// GameDetail is a game together with its player and level
type GameDetail struct {
	Game
	Player Player `json:"player"`
	Level  Level  `json:"level"`
}

// CreateGameRequest starts a new game session
type CreateGameRequest struct {
	PlayerID int64 `json:"player_id"`
	LevelID  int64 `json:"level_id"`
}

// Validate checks that both references are present
func (r *CreateGameRequest) Validate() error {
	var v ValidationError
	v.checkPositive("player_id", r.PlayerID)
	v.checkPositive("level_id", r.LevelID)
	return v.orNil()
}

// UpdateGameRequest carries the final results of a game
type UpdateGameRequest struct {
	Score           int64 `json:"score"`
	FoodEaten       int64 `json:"food_eaten"`
	DurationSeconds int64 `json:"duration_seconds"`
	Completed       bool  `json:"completed"`
}

// Validate rejects negative results
func (r *UpdateGameRequest) Validate() error {
	var v ValidationError
	v.checkNonNegative("score", r.Score)
	v.checkNonNegative("food_eaten", r.FoodEaten)
	v.checkNonNegative("duration_seconds", r.DurationSeconds)
	return v.orNil()
}

// GameFinishedEvent is published once a game's results are recorded
type GameFinishedEvent struct {
	EventID    string    `json:"event_id"`
	GameID     int64     `json:"game_id"`
	PlayerID   int64     `json:"player_id"`
	LevelID    int64     `json:"level_id"`
	Score      int64     `json:"score"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// GameResultMessage is a game result submitted asynchronously
type GameResultMessage struct {
	GameID int64 `json:"game_id"`
	UpdateGameRequest
}
