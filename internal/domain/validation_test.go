package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlayerRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        CreatePlayerRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  CreatePlayerRequest{Username: "snakefan", Email: "fan@example.com"},
		},
		{
			name: "three character username",
			req:  CreatePlayerRequest{Username: "abc", Email: "abc@example.com"},
		},
		{
			name:       "username too short",
			req:        CreatePlayerRequest{Username: "ab", Email: "ab@example.com"},
			wantFields: []string{"username"},
		},
		{
			name:       "username too long",
			req:        CreatePlayerRequest{Username: strings.Repeat("x", 51), Email: "x@example.com"},
			wantFields: []string{"username"},
		},
		{
			name:       "email without at",
			req:        CreatePlayerRequest{Username: "player", Email: "not-an-email"},
			wantFields: []string{"email"},
		},
		{
			name:       "email with display name",
			req:        CreatePlayerRequest{Username: "player", Email: "Bob <bob@example.com>"},
			wantFields: []string{"email"},
		},
		{
			name:       "email without domain dot",
			req:        CreatePlayerRequest{Username: "player", Email: "bob@localhost"},
			wantFields: []string{"email"},
		},
		{
			name: "email at max length",
			req:  CreatePlayerRequest{Username: "player", Email: strings.Repeat("a", EmailMaxLength-len("@example.com")) + "@example.com"},
		},
		{
			name:       "email too long",
			req:        CreatePlayerRequest{Username: "player", Email: strings.Repeat("a", EmailMaxLength-len("@example.com")+1) + "@example.com"},
			wantFields: []string{"email"},
		},
		{
			name:       "both invalid",
			req:        CreatePlayerRequest{Username: "", Email: ""},
			wantFields: []string{"username", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			assertFields(t, err, tt.wantFields)
		})
	}
}

func TestCreateLevelRequest_Validate(t *testing.T) {
	valid := CreateLevelRequest{LevelNumber: 5, Name: "Skilled", Speed: 120, ObstaclesCount: 8, GridSize: 25}

	tests := []struct {
		name       string
		mutate     func(*CreateLevelRequest)
		wantFields []string
	}{
		{name: "valid", mutate: func(*CreateLevelRequest) {}},
		{name: "level number zero", mutate: func(r *CreateLevelRequest) { r.LevelNumber = 0 }, wantFields: []string{"level_number"}},
		{name: "level number eleven", mutate: func(r *CreateLevelRequest) { r.LevelNumber = 11 }, wantFields: []string{"level_number"}},
		{name: "speed too fast", mutate: func(r *CreateLevelRequest) { r.Speed = 49 }, wantFields: []string{"speed"}},
		{name: "speed too slow", mutate: func(r *CreateLevelRequest) { r.Speed = 501 }, wantFields: []string{"speed"}},
		{name: "negative obstacles", mutate: func(r *CreateLevelRequest) { r.ObstaclesCount = -1 }, wantFields: []string{"obstacles_count"}},
		{name: "grid too small", mutate: func(r *CreateLevelRequest) { r.GridSize = 14 }, wantFields: []string{"grid_size"}},
		{name: "grid too large", mutate: func(r *CreateLevelRequest) { r.GridSize = 41 }, wantFields: []string{"grid_size"}},
		{name: "name too long", mutate: func(r *CreateLevelRequest) { r.Name = strings.Repeat("n", 51) }, wantFields: []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assertFields(t, req.Validate(), tt.wantFields)
		})
	}
}

func TestDefaultLevels_AreValid(t *testing.T) {
	require.Len(t, DefaultLevels, MaxLevelNumber)
	for i, lvl := range DefaultLevels {
		assert.Equal(t, i+1, lvl.LevelNumber)
		assert.NoError(t, lvl.Validate(), "level %d", lvl.LevelNumber)
	}
}

func TestUpdateGameRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateGameRequest{}).Validate())
	assert.NoError(t, (&UpdateGameRequest{Score: 1000, FoodEaten: 50, DurationSeconds: 180, Completed: true}).Validate())

	err := (&UpdateGameRequest{Score: -1, FoodEaten: -2, DurationSeconds: -3}).Validate()
	assertFields(t, err, []string{"score", "food_eaten", "duration_seconds"})
}

func TestCreateGameRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateGameRequest{PlayerID: 1, LevelID: 1}).Validate())
	assertFields(t, (&CreateGameRequest{}).Validate(), []string{"player_id", "level_id"})
}

func TestValidLevelNumber(t *testing.T) {
	assert.False(t, ValidLevelNumber(0))
	assert.False(t, ValidLevelNumber(11))
	for n := 1; n <= 10; n++ {
		assert.True(t, ValidLevelNumber(n))
	}
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrGameNotFound))
	assert.True(t, IsNotFoundError(errors.Join(errors.New("wrapped"), ErrLevelNotFound)))
	assert.False(t, IsNotFoundError(ErrEmailTaken))
	assert.True(t, IsConflictError(ErrUsernameTaken))
	assert.False(t, IsConflictError(ErrPlayerNotFound))
}

func assertFields(t *testing.T, err error, want []string) {
	t.Helper()
	if len(want) == 0 {
		assert.NoError(t, err)
		return
	}
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, len(want))
	for _, f := range want {
		assert.True(t, verr.HasField(f), "expected field %s in %v", f, verr.Fields)
	}
}
