package domain

// Level bounds
const (
	MinLevelNumber  = 1
	MaxLevelNumber  = 10
	MinSpeed        = 50
	MaxSpeed        = 500
	MinGridSize     = 15
	MaxGridSize     = 40
	MaxLevelNameLen = 50

	DefaultGridSize = 20
)

// Level is one of the fixed difficulty configurations
type Level struct {
	ID             int64  `json:"id"`
	LevelNumber    int    `json:"level_number"`
	Name           string `json:"name"`
	Speed          int    `json:"speed"`
	ObstaclesCount int    `json:"obstacles_count"`
	GridSize       int    `json:"grid_size"`
}

// CreateLevelRequest describes a level to insert
type CreateLevelRequest struct {
	LevelNumber    int    `json:"level_number"`
	Name           string `json:"name"`
	Speed          int    `json:"speed"`
	ObstaclesCount int    `json:"obstacles_count"`
	GridSize       int    `json:"grid_size"`
}

// Validate checks every level attribute against its allowed range
func (r *CreateLevelRequest) Validate() error {
	var v ValidationError
	v.checkRange("level_number", r.LevelNumber, MinLevelNumber, MaxLevelNumber)
	v.checkLength("name", r.Name, 1, MaxLevelNameLen)
	v.checkRange("speed", r.Speed, MinSpeed, MaxSpeed)
	v.checkNonNegative("obstacles_count", int64(r.ObstaclesCount))
	v.checkRange("grid_size", r.GridSize, MinGridSize, MaxGridSize)
	return v.orNil()
}

// ValidLevelNumber reports whether n identifies one of the seeded levels
func ValidLevelNumber(n int) bool {
	return n >= MinLevelNumber && n <= MaxLevelNumber
}

// DefaultLevels is the reference data seeded on initialization, easiest first
var DefaultLevels = []CreateLevelRequest{
	{LevelNumber: 1, Name: "Beginner", Speed: 200, ObstaclesCount: 0, GridSize: 20},
	{LevelNumber: 2, Name: "Easy", Speed: 180, ObstaclesCount: 2, GridSize: 20},
	{LevelNumber: 3, Name: "Novice", Speed: 160, ObstaclesCount: 4, GridSize: 22},
	{LevelNumber: 4, Name: "Intermediate", Speed: 140, ObstaclesCount: 6, GridSize: 22},
	{LevelNumber: 5, Name: "Skilled", Speed: 120, ObstaclesCount: 8, GridSize: 25},
	{LevelNumber: 6, Name: "Advanced", Speed: 100, ObstaclesCount: 10, GridSize: 25},
	{LevelNumber: 7, Name: "Expert", Speed: 90, ObstaclesCount: 12, GridSize: 28},
	{LevelNumber: 8, Name: "Master", Speed: 80, ObstaclesCount: 15, GridSize: 30},
	{LevelNumber: 9, Name: "Insane", Speed: 70, ObstaclesCount: 18, GridSize: 32},
	{LevelNumber: 10, Name: "Impossible", Speed: 60, ObstaclesCount: 20, GridSize: 35},
}
