package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/redis/go-redis/v9"
)

// RedisAllocationCache implements AllocationCache using Redis
// This is suitable for distributed deployments where multiple instances
// need to share the read-through cache
type RedisAllocationCache struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisAllocationCache creates a new Redis-based allocation cache
func NewRedisAllocationCache(cfg RedisConfig) (*RedisAllocationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAllocationCache{client: client}, nil
}

// NewRedisAllocationCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisAllocationCacheWithClient(client *redis.Client) *RedisAllocationCache {
	return &RedisAllocationCache{client: client}
}

// Get returns the cached allocation for the (vehicle, date) pair, or
// (nil, nil) when no entry exists
func (c *RedisAllocationCache) Get(ctx context.Context, vehicleID string, date time.Time) (*allocation.Allocation, error) {
	data, err := c.client.Get(ctx, Key(vehicleID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached allocation: %w", err)
	}

	return decodeAllocation(data)
}

// Set stores the allocation under its (vehicle, date) key with a TTL
func (c *RedisAllocationCache) Set(ctx context.Context, a *allocation.Allocation, ttl time.Duration) error {
	data, err := encodeAllocation(a)
	if err != nil {
		return fmt.Errorf("failed to encode allocation: %w", err)
	}

	if err := c.client.Set(ctx, Key(a.VehicleID, a.AllocationDate), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache allocation: %w", err)
	}

	return nil
}

// Invalidate removes the entry for the (vehicle, date) pair. Deleting a
// missing key is not an error.
func (c *RedisAllocationCache) Invalidate(ctx context.Context, vehicleID string, date time.Time) error {
	if err := c.client.Del(ctx, Key(vehicleID, date)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached allocation: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAllocationCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisAllocationCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisAllocationCache implements AllocationCache
var _ allocation.AllocationCache = (*RedisAllocationCache)(nil)
