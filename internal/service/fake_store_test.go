package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/snake-leaderboard/internal/config"
	"github.com/snake-leaderboard/internal/domain"
)

// FakeStore is an in-memory Store. InTx runs fn directly against the
// shared maps; failing InTxErr short-circuits before fn runs.
type FakeStore struct {
	mu      sync.Mutex
	players map[int64]*domain.Player
	levels  map[int64]*domain.Level
	games   map[int64]*domain.Game
	nextID  int64
	clock   time.Time

	InTxErr error
	PingErr error
	Txs     int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		players: make(map[int64]*domain.Player),
		levels:  make(map[int64]*domain.Level),
		games:   make(map[int64]*domain.Game),
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *FakeStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Txs++
	if f.InTxErr != nil {
		return f.InTxErr
	}
	return fn(f)
}

func (f *FakeStore) Ping(ctx context.Context) error {
	return f.PingErr
}

func (f *FakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeStore) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *FakeStore) CreatePlayer(ctx context.Context, username, email string) (*domain.Player, error) {
	for _, p := range f.players {
		if p.Username == username {
			return nil, domain.ErrUsernameTaken
		}
		if p.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	p := &domain.Player{ID: f.id(), Username: username, Email: email, CreatedAt: f.now()}
	f.players[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *FakeStore) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *FakeStore) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	for _, p := range f.players {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (f *FakeStore) GetPlayerByEmail(ctx context.Context, email string) (*domain.Player, error) {
	for _, p := range f.players {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (f *FakeStore) ListPlayers(ctx context.Context, offset, limit int) ([]domain.Player, error) {
	all := make([]domain.Player, 0, len(f.players))
	for _, p := range f.players {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), nil
}

func (f *FakeStore) DeletePlayer(ctx context.Context, id int64) error {
	if _, ok := f.players[id]; !ok {
		return domain.ErrPlayerNotFound
	}
	delete(f.players, id)
	for gid, g := range f.games {
		if g.PlayerID == id {
			delete(f.games, gid)
		}
	}
	return nil
}

func (f *FakeStore) CreateLevel(ctx context.Context, req domain.CreateLevelRequest) (*domain.Level, error) {
	l := &domain.Level{
		ID:             f.id(),
		LevelNumber:    req.LevelNumber,
		Name:           req.Name,
		Speed:          req.Speed,
		ObstaclesCount: req.ObstaclesCount,
		GridSize:       req.GridSize,
	}
	f.levels[l.ID] = l
	cp := *l
	return &cp, nil
}

func (f *FakeStore) GetLevel(ctx context.Context, id int64) (*domain.Level, error) {
	l, ok := f.levels[id]
	if !ok {
		return nil, domain.ErrLevelNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *FakeStore) GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error) {
	for _, l := range f.levels {
		if l.LevelNumber == number {
			cp := *l
			return &cp, nil
		}
	}
	return nil, domain.ErrLevelNotFound
}

func (f *FakeStore) ListLevels(ctx context.Context) ([]domain.Level, error) {
	all := make([]domain.Level, 0, len(f.levels))
	for _, l := range f.levels {
		all = append(all, *l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LevelNumber < all[j].LevelNumber })
	return all, nil
}

func (f *FakeStore) CountLevels(ctx context.Context) (int64, error) {
	return int64(len(f.levels)), nil
}

func (f *FakeStore) LockLevels(ctx context.Context) error {
	return nil
}

func (f *FakeStore) CreateGame(ctx context.Context, playerID, levelID int64) (*domain.Game, error) {
	g := &domain.Game{ID: f.id(), PlayerID: playerID, LevelID: levelID, CreatedAt: f.now()}
	f.games[g.ID] = g
	cp := *g
	return &cp, nil
}

func (f *FakeStore) UpdateGame(ctx context.Context, id int64, req domain.UpdateGameRequest) (*domain.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	g.Score = req.Score
	g.FoodEaten = req.FoodEaten
	g.DurationSeconds = req.DurationSeconds
	g.Completed = req.Completed
	cp := *g
	return &cp, nil
}

func (f *FakeStore) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *FakeStore) GetGameDetail(ctx context.Context, id int64) (*domain.GameDetail, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return &domain.GameDetail{Game: *g, Player: *f.players[g.PlayerID], Level: *f.levels[g.LevelID]}, nil
}

func (f *FakeStore) ListPlayerGames(ctx context.Context, playerID int64, offset, limit int) ([]domain.GameDetail, error) {
	var all []domain.GameDetail
	for _, g := range f.games {
		if g.PlayerID == playerID {
			all = append(all, domain.GameDetail{Game: *g, Player: *f.players[g.PlayerID], Level: *f.levels[g.LevelID]})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, offset, limit), nil
}

func (f *FakeStore) Leaderboard(ctx context.Context, limit int) ([]domain.PlayerTotals, error) {
	totals := make(map[int64]*domain.PlayerTotals)
	for _, g := range f.games {
		t, ok := totals[g.PlayerID]
		if !ok {
			t = &domain.PlayerTotals{PlayerID: g.PlayerID, Username: f.players[g.PlayerID].Username}
			totals[g.PlayerID] = t
		}
		t.TotalScore += g.Score
		t.GamesPlayed++
		if n := f.levels[g.LevelID].LevelNumber; n > t.HighestLevel {
			t.HighestLevel = n
		}
	}

	rows := make([]domain.PlayerTotals, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, *t)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return page(rows, 0, limit), nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// FakeCache is an in-memory LeaderboardCache
type FakeCache struct {
	entries     []domain.LeaderboardEntry
	cached      bool
	gen         int64
	TopErr      error
	GenErr      error
	Stores      int
	Rejected    int
	Invalidates int
}

func (c *FakeCache) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, bool, error) {
	if c.TopErr != nil {
		return nil, false, c.TopErr
	}
	if !c.cached {
		return nil, false, nil
	}
	if n > len(c.entries) {
		n = len(c.entries)
	}
	return c.entries[:n], true, nil
}

func (c *FakeCache) Generation(ctx context.Context) (int64, error) {
	if c.GenErr != nil {
		return 0, c.GenErr
	}
	return c.gen, nil
}

func (c *FakeCache) Store(ctx context.Context, gen int64, entries []domain.LeaderboardEntry) (bool, error) {
	if gen != c.gen {
		c.Rejected++
		return false, nil
	}
	c.Stores++
	c.entries = entries
	c.cached = true
	return true, nil
}

func (c *FakeCache) Invalidate(ctx context.Context) error {
	c.Invalidates++
	c.gen++
	c.entries = nil
	c.cached = false
	return nil
}

// FakePublisher records published events
type FakePublisher struct {
	Events     []domain.GameFinishedEvent
	PublishErr error
}

func (p *FakePublisher) PublishGameFinished(ctx context.Context, event domain.GameFinishedEvent) error {
	if p.PublishErr != nil {
		return p.PublishErr
	}
	p.Events = append(p.Events, event)
	return nil
}

// FakeBroadcaster records broadcast snapshots
type FakeBroadcaster struct {
	Snapshots [][]domain.LeaderboardEntry
}

func (b *FakeBroadcaster) BroadcastLeaderboard(entries []domain.LeaderboardEntry) {
	b.Snapshots = append(b.Snapshots, entries)
}

// FakeRecorder counts recorded metrics
type FakeRecorder struct {
	Created   int
	Finished  int
	Completed int
	Hits      int
	Misses    int
}

func (r *FakeRecorder) GameCreated() { r.Created++ }

func (r *FakeRecorder) GameFinished(completed bool) {
	r.Finished++
	if completed {
		r.Completed++
	}
}

func (r *FakeRecorder) LeaderboardCache(hit bool) {
	if hit {
		r.Hits++
	} else {
		r.Misses++
	}
}

func newTestService(store Store) *SnakeService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSnakeService(store, &config.LeaderboardConfig{
		DefaultLimit: domain.DefaultLeaderboardLimit,
		MaxLimit:     domain.MaxLeaderboardLimit,
	}, logger)
}
