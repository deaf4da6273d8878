package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Version formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// All helpers tolerate a nil client so the service (and its tests) can run
// with caching disabled.

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// CacheVersion returns the current version counter for a cache namespace.
// List responses embed the version in their key, so bumping the counter
// invalidates every cached page and filter combination at once.
func CacheVersion(ctx context.Context, rdb *redis.Client, namespace string) int64 {
	if rdb == nil {
		return 0 // Caching disabled
	}
	val, err := rdb.Get(ctx, namespace+":ver").Result()
	if err != nil {
		return 0 // Missing counter behaves as version 0
	}
	ver, _ := strconv.ParseInt(val, 10, 64)
	return ver
}

// BumpCacheVersion invalidates a cache namespace by incrementing its counter
func BumpCacheVersion(ctx context.Context, rdb *redis.Client, namespace string) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	return rdb.Incr(ctx, namespace+":ver").Err()
}
