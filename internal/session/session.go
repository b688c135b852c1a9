// Package session keeps the per-pair conversation session in Redis: a
// capped ring of recent turns for fast prompt assembly, plus an idle
// counter whose expiry marks the session boundary.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cymond/educhat/internal/prompt"
)

const keyPrefix = "educhat:session:"

// DefaultIdleTimeout is how long a pair can stay silent before the next
// message starts a fresh session.
const DefaultIdleTimeout = 30 * time.Minute

// Cache holds recent turns and session counters in Redis. Postgres keeps
// the durable transcript; this layer only exists so a chat turn does not
// need a database round trip for history, and so sessions expire on idle.
type Cache struct {
	rdb     *redis.Client
	idle    time.Duration
	maxTurn int
	logger  *zap.Logger
}

// New connects to Redis and returns a session cache.
func New(redisURL string, idle time.Duration, maxTurns int, logger *zap.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if maxTurns <= 0 {
		maxTurns = prompt.DefaultHistoryLimit
	}
	return &Cache{rdb: rdb, idle: idle, maxTurn: maxTurns, logger: logger}, nil
}

// NewWithClient wraps an existing Redis client. Used by tests.
func NewWithClient(rdb *redis.Client, idle time.Duration, maxTurns int, logger *zap.Logger) *Cache {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if maxTurns <= 0 {
		maxTurns = prompt.DefaultHistoryLimit
	}
	return &Cache{rdb: rdb, idle: idle, maxTurn: maxTurns, logger: logger}
}

func turnsKey(characterName, userID string) string {
	return keyPrefix + characterName + ":" + userID + ":turns"
}

func countKey(characterName, userID string) string {
	return keyPrefix + characterName + ":" + userID + ":count"
}

// AppendTurn pushes a turn onto the pair's recent-history ring and
// refreshes the idle timer.
func (c *Cache) AppendTurn(ctx context.Context, characterName, userID string, turn prompt.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	key := turnsKey(characterName, userID)
	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-c.maxTurn), -1)
	pipe.Expire(ctx, key, c.idle)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// RecentTurns returns the cached ring in chronological order. A missing
// or expired key is an empty history, not an error.
func (c *Cache) RecentTurns(ctx context.Context, characterName, userID string) ([]prompt.Turn, error) {
	vals, err := c.rdb.LRange(ctx, turnsKey(characterName, userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}

	turns := make([]prompt.Turn, 0, len(vals))
	for _, v := range vals {
		var t prompt.Turn
		if json.Unmarshal([]byte(v), &t) == nil {
			turns = append(turns, t)
		}
	}
	return turns, nil
}

// BumpMessageCount increments the pair's session message counter and
// returns the new value. The counter carries the same idle TTL as the
// turn ring, so an expired counter restarts the count at 1.
func (c *Cache) BumpMessageCount(ctx context.Context, characterName, userID string) (int, error) {
	key := countKey(characterName, userID)
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.idle)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("bump message count: %w", err)
	}
	return int(incr.Val()), nil
}

// Reset drops the cached session for a pair.
func (c *Cache) Reset(ctx context.Context, characterName, userID string) error {
	if err := c.rdb.Del(ctx, turnsKey(characterName, userID), countKey(characterName, userID)).Err(); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Close shuts down the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
