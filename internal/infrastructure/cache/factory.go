package cache

import (
	"fmt"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/fleetops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AllocationCacheFactory creates allocation caches based on configuration
type AllocationCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// AllocationCacheFactoryOption is a functional option for configuring the factory
type AllocationCacheFactoryOption func(*AllocationCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) AllocationCacheFactoryOption {
	return func(f *AllocationCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) AllocationCacheFactoryOption {
	return func(f *AllocationCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewAllocationCacheFactory creates a new factory
func NewAllocationCacheFactory(cfg config.RedisConfig, opts ...AllocationCacheFactoryOption) *AllocationCacheFactory {
	f := &AllocationCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based allocation cache
func (f *AllocationCacheFactory) CreateRedisCache() (allocation.AllocationCache, error) {
	cache, err := NewRedisAllocationCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis allocation cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory allocation cache
// This is suitable for single-instance deployments and testing
// WARNING: In-memory caches do not share state across process instances,
// so cross-instance invalidations are lost in distributed deployments
func (f *AllocationCacheFactory) CreateInMemoryCache() allocation.AllocationCache {
	return NewInMemoryAllocationCache()
}

// CreateCache creates an allocation cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory if Redis is unreachable
// and fallback is allowed. The service layer already treats every cache
// failure as a miss, so running without Redis only costs read performance.
func (f *AllocationCacheFactory) CreateCache() (allocation.AllocationCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis allocation cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis unavailable and in-memory fallback disabled: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory allocation cache",
		zap.Error(err))
	return f.CreateInMemoryCache(), nil
}
