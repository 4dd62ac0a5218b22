package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAllocationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&allocation.Allocation{})
	require.NoError(t, err)

	return db
}

func mustNewAllocation(t *testing.T, employeeID, vehicleID string, date time.Time) *allocation.Allocation {
	t.Helper()
	a, err := allocation.NewAllocation(employeeID, vehicleID, date)
	require.NoError(t, err)
	return a
}

func TestGormAllocationRepository_Create(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()

	date := time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)

	t.Run("creates allocation", func(t *testing.T) {
		a := mustNewAllocation(t, "emp-1", "veh-1", date)

		err := repo.Create(ctx, a)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "emp-1", found.EmployeeID)
		assert.Equal(t, "veh-1", found.VehicleID)
	})

	t.Run("rejects duplicate vehicle and date", func(t *testing.T) {
		dup := mustNewAllocation(t, "emp-2", "veh-1", date)

		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("allows same vehicle on another date", func(t *testing.T) {
		a := mustNewAllocation(t, "emp-2", "veh-1", date.AddDate(0, 0, 1))

		err := repo.Create(ctx, a)
		assert.NoError(t, err)
	})

	t.Run("allows another vehicle on same date", func(t *testing.T) {
		a := mustNewAllocation(t, "emp-2", "veh-2", date)

		err := repo.Create(ctx, a)
		assert.NoError(t, err)
	})
}

func TestGormAllocationRepository_FindByVehicleAndDate(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()

	date := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	a := mustNewAllocation(t, "emp-1", "veh-9", date)
	require.NoError(t, repo.Create(ctx, a))

	t.Run("finds allocation by pair", func(t *testing.T) {
		found, err := repo.FindByVehicleAndDate(ctx, "veh-9", date)
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)
	})

	t.Run("normalizes lookup date", func(t *testing.T) {
		afternoon := time.Date(2026, 11, 1, 15, 30, 0, 0, time.UTC)

		found, err := repo.FindByVehicleAndDate(ctx, "veh-9", afternoon)
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)
	})

	t.Run("returns not found for free pair", func(t *testing.T) {
		_, err := repo.FindByVehicleAndDate(ctx, "veh-9", date.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAllocationRepository_Save(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()

	date := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	a := mustNewAllocation(t, "emp-1", "veh-1", date)
	require.NoError(t, repo.Create(ctx, a))

	t.Run("persists reassignment", func(t *testing.T) {
		require.NoError(t, a.Reassign("emp-2"))

		err := repo.Save(ctx, a)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "emp-2", found.EmployeeID)
	})

	t.Run("rejects reschedule onto taken date", func(t *testing.T) {
		taken := mustNewAllocation(t, "emp-3", "veh-1", date.AddDate(0, 0, 1))
		require.NoError(t, repo.Create(ctx, taken))

		a.Reschedule(taken.AllocationDate)
		err := repo.Save(ctx, a)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormAllocationRepository_Delete(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()

	a := mustNewAllocation(t, "emp-1", "veh-1", time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, a))

	t.Run("deletes allocation", func(t *testing.T) {
		err := repo.Delete(ctx, a.ID)
		require.NoError(t, err)

		_, err = repo.FindByID(ctx, a.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAllocationRepository_FindHistory(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		employee := fmt.Sprintf("emp-%d", i%3)
		vehicle := fmt.Sprintf("veh-%d", i%5)
		a := mustNewAllocation(t, employee, vehicle, base.AddDate(0, 0, i))
		require.NoError(t, repo.Create(ctx, a))
	}

	t.Run("returns first page with total", func(t *testing.T) {
		records, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{Skip: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, records, 10)
	})

	t.Run("returns remainder on second page", func(t *testing.T) {
		records, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{Skip: 10, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, records, 5)
	})

	t.Run("orders by date ascending", func(t *testing.T) {
		records, _, err := repo.FindHistory(ctx, allocation.HistoryFilter{Skip: 0, Limit: 15})
		require.NoError(t, err)
		for i := 1; i < len(records); i++ {
			assert.False(t, records[i].AllocationDate.Before(records[i-1].AllocationDate))
		}
	})

	t.Run("filters by employee", func(t *testing.T) {
		employee := "emp-0"
		records, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{EmployeeID: &employee, Skip: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, r := range records {
			assert.Equal(t, employee, r.EmployeeID)
		}
	})

	t.Run("filters by vehicle", func(t *testing.T) {
		vehicle := "veh-2"
		records, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{VehicleID: &vehicle, Skip: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		for _, r := range records {
			assert.Equal(t, vehicle, r.VehicleID)
		}
	})

	t.Run("filters by inclusive date range", func(t *testing.T) {
		start := base.AddDate(0, 0, 3)
		end := base.AddDate(0, 0, 7)
		records, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{StartDate: &start, EndDate: &end, Skip: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, r := range records {
			assert.False(t, r.AllocationDate.Before(start))
			assert.False(t, r.AllocationDate.After(end))
		}
	})

	t.Run("filters with open-ended range", func(t *testing.T) {
		start := base.AddDate(0, 0, 12)
		_, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{StartDate: &start, Skip: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("returns empty page past the end", func(t *testing.T) {
		records, total, err := repo.FindHistory(ctx, allocation.HistoryFilter{Skip: 20, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Empty(t, records)
	})
}
