package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snake-leaderboard/internal/config"
	"github.com/snake-leaderboard/internal/domain"
)

// Cache keys
const (
	// LeaderboardKey holds the cached ranked snapshot
	LeaderboardKey = "snake:leaderboard:top"
	// GenerationKey is bumped on every invalidation
	GenerationKey = "snake:leaderboard:gen"
)

// storeIfCurrent writes the snapshot only while the generation still
// matches the one read before the snapshot was computed.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2])
if gen == false then gen = "0" end
if gen ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// LeaderboardCache stores the computed leaderboard in Redis with a TTL.
// The snapshot is written whole and read back as a prefix.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewLeaderboardCache connects to Redis and verifies the connection
func NewLeaderboardCache(cfg *config.RedisConfig, logger *slog.Logger) (*LeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewLeaderboardCacheFromClient(client, cfg.CacheTTL, logger), nil
}

// NewLeaderboardCacheFromClient wraps an existing client
func NewLeaderboardCacheFromClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Close closes the Redis connection
func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}

// Ping checks Redis connectivity
func (c *LeaderboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Top returns the first n cached entries. ok is false when nothing is cached.
func (c *LeaderboardCache) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, LeaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading leaderboard cache: %w", err)
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("discarding malformed leaderboard cache", "error", err)
		return nil, false, nil
	}

	if n < len(entries) {
		entries = entries[:n]
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, true, nil
}

// Generation returns the current invalidation counter, 0 when unset
func (c *LeaderboardCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading leaderboard generation: %w", err)
	}
	return gen, nil
}

// Store replaces the cached snapshot if no invalidation happened since
// gen was read. It reports whether the snapshot was written.
func (c *LeaderboardCache) Store(ctx context.Context, gen int64, entries []domain.LeaderboardEntry) (bool, error) {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return false, fmt.Errorf("encoding leaderboard: %w", err)
	}

	written, err := storeIfCurrent.Run(ctx, c.client,
		[]string{LeaderboardKey, GenerationKey},
		gen, data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("writing leaderboard cache: %w", err)
	}
	return written == 1, nil
}

// Invalidate drops the cached snapshot and bumps the generation so that
// fills computed before this call are rejected
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, LeaderboardKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating leaderboard cache: %w", err)
	}
	return nil
}
