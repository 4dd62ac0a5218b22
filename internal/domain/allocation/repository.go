package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryFilter represents the optional filters and pagination window for a
// history query. Nil fields are not applied; StartDate/EndDate combine into
// an inclusive range when both are set, or a one-sided bound when only one
// is.
type HistoryFilter struct {
	EmployeeID *string
	VehicleID  *string
	StartDate  *time.Time
	EndDate    *time.Time
	Skip       int
	Limit      int
}

// AllocationRepository defines the interface for allocation persistence
type AllocationRepository interface {
	// FindByID finds an allocation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)

	// FindByVehicleAndDate finds the allocation for an exact
	// (vehicle, normalized date) pair
	FindByVehicleAndDate(ctx context.Context, vehicleID string, date time.Time) (*Allocation, error)

	// Create inserts a new allocation. A duplicate (vehicle, date) pair is
	// reported as shared.ErrAlreadyExists.
	Create(ctx context.Context, a *Allocation) error

	// Save persists changes to an existing allocation
	Save(ctx context.Context, a *Allocation) error

	// Delete removes an allocation permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// FindHistory returns the page [Skip, Skip+Limit) of matching
	// allocations ordered ascending by allocation date, together with the
	// total match count. Count and page must be read from one consistent
	// snapshot.
	FindHistory(ctx context.Context, filter HistoryFilter) ([]Allocation, int64, error)
}

// AllocationCache is the derived, disposable projection of allocations keyed
// by (vehicle, date). Entries may be absent, stale-but-unexpired, or
// invalidated at any time without affecting correctness of the store.
type AllocationCache interface {
	// Get returns the cached allocation, or (nil, nil) on a miss
	Get(ctx context.Context, vehicleID string, date time.Time) (*Allocation, error)

	// Set stores the allocation with a bounded lifetime
	Set(ctx context.Context, a *Allocation, ttl time.Duration) error

	// Invalidate removes the entry for the (vehicle, date) pair
	Invalidate(ctx context.Context, vehicleID string, date time.Time) error

	// Close releases the underlying client or background resources
	Close() error
}
