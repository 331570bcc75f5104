package schedulecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 10 * time.Minute

// KV is the subset of *redis.Client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Loader is the authoritative schedule source behind the cache.
type Loader interface {
	WeeklySchedule(ctx context.Context, branchID string) (availability.WeeklySchedule, error)
}

// Cache is a read-through Redis cache of weekly schedules keyed by branch.
type Cache struct {
	kv     KV
	loader Loader
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func New(kv KV, loader Loader, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{kv: kv, loader: loader, ttl: ttl, prefix: "availability:schedule:", logger: logger}
}

func (c *Cache) key(branchID string) string {
	return c.prefix + branchID
}

// WeeklySchedule serves from Redis when possible. Redis errors are logged and the loader
// answers instead; a schedule the loader returns is written back best effort.
func (c *Cache) WeeklySchedule(ctx context.Context, branchID string) (availability.WeeklySchedule, error) {
	if c.kv != nil {
		raw, err := c.kv.Get(ctx, c.key(branchID)).Bytes()
		switch {
		case err == nil:
			var schedule availability.WeeklySchedule
			jerr := json.Unmarshal(raw, &schedule)
			if jerr == nil {
				return schedule, nil
			}
			c.logger.Warn("schedule cache entry unreadable", "branch_id", branchID, "err", jerr)
		case errors.Is(err, redis.Nil):
		default:
			c.logger.Warn("schedule cache read failed", "branch_id", branchID, "err", err)
		}
	}

	schedule, err := c.loader.WeeklySchedule(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if c.kv != nil {
		if raw, err := json.Marshal(schedule); err == nil {
			if err := c.kv.Set(ctx, c.key(branchID), raw, c.ttl).Err(); err != nil {
				c.logger.Warn("schedule cache write failed", "branch_id", branchID, "err", err)
			}
		}
	}
	return schedule, nil
}

// Invalidate drops the cached schedule of a branch.
func (c *Cache) Invalidate(ctx context.Context, branchID string) error {
	if c.kv == nil {
		return nil
	}
	if err := c.kv.Del(ctx, c.key(branchID)).Err(); err != nil {
		return fmt.Errorf("invalidate schedule %s: %w", branchID, err)
	}
	return nil
}
