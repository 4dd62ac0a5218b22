package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/google/uuid"
)

// Key derives the cache key for a (vehicle, date) pair. Every path that
// reads, writes, or invalidates the cache must go through this function so
// the key stays byte-identical everywhere; the date is normalized to
// midnight UTC before formatting.
func Key(vehicleID string, date time.Time) string {
	return fmt.Sprintf("vehicle:%s:date:%s", vehicleID, allocation.NormalizeDate(date).Format(time.RFC3339))
}

// allocationEntry is the wire shape stored in the cache. It is decoupled
// from the domain struct so GORM tags and timestamp fields never leak into
// cached payloads.
type allocationEntry struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	VehicleID      string `json:"vehicle_id"`
	AllocationDate string `json:"allocation_date"`
}

func encodeAllocation(a *allocation.Allocation) ([]byte, error) {
	entry := allocationEntry{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID,
		VehicleID:      a.VehicleID,
		AllocationDate: a.AllocationDate.Format(time.RFC3339),
	}
	return json.Marshal(entry)
}

func decodeAllocation(data []byte) (*allocation.Allocation, error) {
	var entry allocationEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cached allocation: %w", err)
	}

	id, err := uuid.Parse(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid allocation ID in cache: %w", err)
	}

	date, err := time.Parse(time.RFC3339, entry.AllocationDate)
	if err != nil {
		return nil, fmt.Errorf("invalid allocation date in cache: %w", err)
	}

	return &allocation.Allocation{
		ID:             id,
		EmployeeID:     entry.EmployeeID,
		VehicleID:      entry.VehicleID,
		AllocationDate: date,
	}, nil
}
