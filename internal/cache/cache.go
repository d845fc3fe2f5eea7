// Package cache stores resolved geocoding results. Redis is used when it is
// configured; otherwise results live in process memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/tripplanner/internal/geocode"
)

const keyPrefix = "geocode:"

// Redis stores geocoded locations in Redis. A zero TTL keeps entries until
// they are evicted by Redis itself.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis cache.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// key returns the Redis key for the exact, case-sensitive input.
func key(city string) string {
	return keyPrefix + city
}

// Get retrieves a cached location.
// Returns nil, nil on a cache miss (not an error).
func (c *Redis) Get(ctx context.Context, city string) (*geocode.Location, error) {
	val, err := c.client.Get(ctx, key(city)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for city %s: %w", city, err)
	}

	var loc geocode.Location
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		return nil, fmt.Errorf("unmarshaling cached location for city %s: %w", city, err)
	}

	return &loc, nil
}

// Put stores a location with the configured TTL.
func (c *Redis) Put(ctx context.Context, city string, loc geocode.Location) error {
	b, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshaling location for city %s: %w", city, err)
	}

	if err := c.client.Set(ctx, key(city), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for city %s: %w", city, err)
	}

	return nil
}
