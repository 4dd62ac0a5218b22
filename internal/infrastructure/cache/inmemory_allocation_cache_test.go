package cache

import (
	"context"
	"testing"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	date := time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)

	t.Run("formats key", func(t *testing.T) {
		assert.Equal(t, "vehicle:veh-1:date:2026-10-26T00:00:00Z", Key("veh-1", date))
	})

	t.Run("normalizes time component", func(t *testing.T) {
		afternoon := time.Date(2026, 10, 26, 15, 42, 7, 0, time.UTC)
		assert.Equal(t, Key("veh-1", date), Key("veh-1", afternoon))
	})

	t.Run("normalizes zone before truncating", func(t *testing.T) {
		// 23:00 at UTC+2 is 21:00 UTC, still the same calendar day
		zone := time.FixedZone("UTC+2", 2*60*60)
		evening := time.Date(2026, 10, 26, 23, 0, 0, 0, zone)
		assert.Equal(t, Key("veh-1", date), Key("veh-1", evening))
	})
}

func TestAllocationCodec_RoundTrip(t *testing.T) {
	a, err := allocation.NewAllocation("emp-1", "veh-1", time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	data, err := encodeAllocation(a)
	require.NoError(t, err)

	decoded, err := decodeAllocation(data)
	require.NoError(t, err)

	assert.Equal(t, a.ID, decoded.ID)
	assert.Equal(t, a.EmployeeID, decoded.EmployeeID)
	assert.Equal(t, a.VehicleID, decoded.VehicleID)
	assert.True(t, a.AllocationDate.Equal(decoded.AllocationDate))
}

func TestDecodeAllocation_Invalid(t *testing.T) {
	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := decodeAllocation([]byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("rejects bad ID", func(t *testing.T) {
		_, err := decodeAllocation([]byte(`{"id":"nope","employee_id":"e","vehicle_id":"v","allocation_date":"2026-10-26T00:00:00Z"}`))
		assert.Error(t, err)
	})

	t.Run("rejects bad date", func(t *testing.T) {
		_, err := decodeAllocation([]byte(`{"id":"7b7f2f6e-3f67-44c5-9d2a-6cb1f39f3a01","employee_id":"e","vehicle_id":"v","allocation_date":"yesterday"}`))
		assert.Error(t, err)
	})
}

func TestInMemoryAllocationCache(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)

	t.Run("get and set", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		defer cache.Close()

		a, err := allocation.NewAllocation("emp-1", "veh-1", date)
		require.NoError(t, err)

		require.NoError(t, cache.Set(ctx, a, time.Minute))

		found, err := cache.Get(ctx, "veh-1", date)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, a.ID, found.ID)
		assert.Equal(t, "emp-1", found.EmployeeID)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		defer cache.Close()

		found, err := cache.Get(ctx, "veh-1", date)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		defer cache.Close()

		a, err := allocation.NewAllocation("emp-1", "veh-1", date)
		require.NoError(t, err)

		require.NoError(t, cache.Set(ctx, a, 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		found, err := cache.Get(ctx, "veh-1", date)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("invalidate removes entry", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		defer cache.Close()

		a, err := allocation.NewAllocation("emp-1", "veh-1", date)
		require.NoError(t, err)

		require.NoError(t, cache.Set(ctx, a, time.Minute))
		require.NoError(t, cache.Invalidate(ctx, "veh-1", date))

		found, err := cache.Get(ctx, "veh-1", date)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("invalidate missing key is not an error", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		defer cache.Close()

		assert.NoError(t, cache.Invalidate(ctx, "veh-ghost", date))
	})

	t.Run("close is idempotent", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		assert.NoError(t, cache.Close())
		assert.NoError(t, cache.Close())
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		cache := NewInMemoryAllocationCache()
		defer cache.Close()

		a, err := allocation.NewAllocation("emp-1", "veh-1", date)
		require.NoError(t, err)

		require.NoError(t, cache.Set(ctx, a, 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)
		cache.cleanup()

		cache.mu.RLock()
		defer cache.mu.RUnlock()
		assert.Empty(t, cache.entries)
	})
}
