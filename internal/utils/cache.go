package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"
	"strconv"
	"time" // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

const (
	UsersListKey = "users:all"      // Prefix of the user list cache key
	UsersGenKey  = "users:gen"      // Generation counter bumped on every user mutation
	UsersListTTL = 60 * time.Second // How long a cached list is served
)

// GenerationKey appends a generation to prefix, e.g. "users:all:3"
func GenerationKey(prefix string, gen int64) string {
	return prefix + ":" + strconv.FormatInt(gen, 10)
}

// Cache is a JSON cache on Redis. A Cache with a nil client is disabled:
// reads always miss and writes are dropped.
type Cache struct {
	rdb *redis.Client
}

// NewCache wraps rdb, which may be nil
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Enabled reports whether a Redis client is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get retrieves a value and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

// Set stores value as JSON with a TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Generation reads the counter at key, zero when unset. Entries cached
// under an older generation are never read again, so a reader that raced a
// mutation cannot put stale data back in front of later readers.
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	gen, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil // Nothing has been mutated yet
	}
	return gen, err
}

// Bump advances the counter at key
func (c *Cache) Bump(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Incr(ctx, key).Err()
}
