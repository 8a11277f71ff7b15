package domain

import "time"

// Username and email length bounds
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	EmailMaxLength    = 100
)

// Player represents a player in the system
type Player struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePlayerRequest represents a request to register a new player
type CreatePlayerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate checks username length and email syntax
func (r *CreatePlayerRequest) Validate() error {
	var v ValidationError
	v.checkLength("username", r.Username, UsernameMinLength, UsernameMaxLength)
	v.checkEmail("email", r.Email)
	return v.orNil()
}
