package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	var a allocation.Allocation
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByVehicleAndDate finds the allocation for an exact (vehicle, date) pair.
// The date is normalized before comparison so lookups are date-granular.
func (r *GormAllocationRepository) FindByVehicleAndDate(ctx context.Context, vehicleID string, date time.Time) (*allocation.Allocation, error) {
	var a allocation.Allocation
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND allocation_date = ?", vehicleID, allocation.NormalizeDate(date)).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new allocation. The unique index on
// (vehicle_id, allocation_date) turns racing duplicates into
// shared.ErrAlreadyExists.
func (r *GormAllocationRepository) Create(ctx context.Context, a *allocation.Allocation) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to an existing allocation
func (r *GormAllocationRepository) Save(ctx context.Context, a *allocation.Allocation) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes an allocation permanently
func (r *GormAllocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&allocation.Allocation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindHistory returns one page of matching allocations plus the total match
// count. Both reads run inside a single transaction so the count and the
// page observe the same snapshot even under concurrent writes.
func (r *GormAllocationRepository) FindHistory(ctx context.Context, filter allocation.HistoryFilter) ([]allocation.Allocation, int64, error) {
	var (
		records []allocation.Allocation
		total   int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := applyHistoryFilter(tx.Model(&allocation.Allocation{}), filter)

		if err := query.Count(&total).Error; err != nil {
			return err
		}

		return query.
			Order("allocation_date ASC, id ASC").
			Offset(filter.Skip).
			Limit(filter.Limit).
			Find(&records).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// applyHistoryFilter translates a HistoryFilter into WHERE clauses. Start
// and end bounds are inclusive and independent.
func applyHistoryFilter(query *gorm.DB, filter allocation.HistoryFilter) *gorm.DB {
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.StartDate != nil {
		query = query.Where("allocation_date >= ?", allocation.NormalizeDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("allocation_date <= ?", allocation.NormalizeDate(*filter.EndDate))
	}
	return query
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ allocation.AllocationRepository = (*GormAllocationRepository)(nil)
