package domain

// Leaderboard limits
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardEntry represents a single ranked player
type LeaderboardEntry struct {
	Rank         int64  `json:"rank"`
	Username     string `json:"username"`
	TotalScore   int64  `json:"total_score"`
	GamesPlayed  int64  `json:"games_played"`
	HighestLevel int    `json:"highest_level"`
}

// PlayerTotals is one aggregated leaderboard row before ranking
type PlayerTotals struct {
	PlayerID     int64
	Username     string
	TotalScore   int64
	GamesPlayed  int64
	HighestLevel int
}

// RankEntries assigns 1-based sequential ranks to rows already sorted by
// total score. Equal totals get consecutive ranks, not a shared one.
func RankEntries(rows []PlayerTotals) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Rank:         int64(i + 1),
			Username:     row.Username,
			TotalScore:   row.TotalScore,
			GamesPlayed:  row.GamesPlayed,
			HighestLevel: row.HighestLevel,
		}
	}
	return entries
}

// ClampLimit applies the default for non-positive limits and caps at max
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}
