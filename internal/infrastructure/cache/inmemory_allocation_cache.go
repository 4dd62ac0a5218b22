package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
)

// entry represents a cached payload with expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryAllocationCache implements AllocationCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryAllocationCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryAllocationCache creates a new in-memory allocation cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryAllocationCache() *InMemoryAllocationCache {
	cache := &InMemoryAllocationCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached allocation for the (vehicle, date) pair, or
// (nil, nil) when no entry exists or it has expired
func (c *InMemoryAllocationCache) Get(ctx context.Context, vehicleID string, date time.Time) (*allocation.Allocation, error) {
	c.mu.RLock()
	e, exists := c.entries[Key(vehicleID, date)]
	c.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	// Expired entries are misses; the cleanup loop removes them later
	if time.Now().After(e.expiresAt) {
		return nil, nil
	}

	return decodeAllocation(e.data)
}

// Set stores the allocation under its (vehicle, date) key with a TTL
func (c *InMemoryAllocationCache) Set(ctx context.Context, a *allocation.Allocation, ttl time.Duration) error {
	data, err := encodeAllocation(a)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(a.VehicleID, a.AllocationDate)] = entry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Invalidate removes the entry for the (vehicle, date) pair. Deleting a
// missing key is not an error.
func (c *InMemoryAllocationCache) Invalidate(ctx context.Context, vehicleID string, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, Key(vehicleID, date))
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryAllocationCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryAllocationCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryAllocationCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryAllocationCache implements AllocationCache
var _ allocation.AllocationCache = (*InMemoryAllocationCache)(nil)
