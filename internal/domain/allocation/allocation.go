package allocation

import (
	"time"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Domain errors specific to vehicle allocations
var (
	// ErrVehicleAlreadyAllocated is returned when the vehicle already has an
	// allocation for the requested date
	ErrVehicleAlreadyAllocated = shared.NewDomainError("ALREADY_EXISTS", "Vehicle already allocated for this date")

	// ErrAllocationLocked is returned when mutating an allocation dated today
	// or earlier
	ErrAllocationLocked = shared.NewDomainError("INVALID_STATE", "Cannot modify past or current date allocations")
)

// Allocation represents one vehicle assigned to an employee for one calendar
// date. It is the aggregate root for allocation operations.
//
// AllocationDate is always stored normalized to midnight UTC so that
// equality and range comparisons are date-granular. At most one allocation
// may exist per (vehicle_id, allocation_date) pair; the table carries a
// unique index so the store rejects duplicates that slip past the service's
// pre-check.
type Allocation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID     string    `gorm:"type:varchar(64);not null;index"`
	VehicleID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_allocations_vehicle_date,priority:1"`
	AllocationDate time.Time `gorm:"not null;index;uniqueIndex:idx_allocations_vehicle_date,priority:2"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// NewAllocation creates a new allocation with a normalized date
func NewAllocation(employeeID, vehicleID string, date time.Time) (*Allocation, error) {
	if employeeID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Employee ID cannot be empty")
	}
	if vehicleID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Vehicle ID cannot be empty")
	}

	now := time.Now()
	return &Allocation{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		VehicleID:      vehicleID,
		AllocationDate: NormalizeDate(date),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NormalizeDate truncates a timestamp to midnight UTC. Both the write path
// and the cache key derivation depend on this being the only normalization
// used anywhere.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsLocked reports whether the allocation can no longer be modified or
// deleted. An allocation dated today or earlier is locked; the transition is
// driven purely by wall-clock time.
func (a *Allocation) IsLocked(now time.Time) bool {
	return !a.AllocationDate.After(NormalizeDate(now))
}

// Reassign changes the employee the vehicle is allocated to
func (a *Allocation) Reassign(employeeID string) error {
	if employeeID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Employee ID cannot be empty")
	}
	a.EmployeeID = employeeID
	a.UpdatedAt = time.Now()
	return nil
}

// Reschedule moves the allocation to a different calendar date
func (a *Allocation) Reschedule(date time.Time) {
	a.AllocationDate = NormalizeDate(date)
	a.UpdatedAt = time.Now()
}
