package allocation

import (
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
)

// DateLayout is the wire format for allocation dates. Requests and
// responses carry calendar dates only; the time-of-day component is
// always dropped on the way in.
const DateLayout = "2006-01-02"

// CreateAllocationRequest represents a request to allocate a vehicle to an
// employee for one calendar date
type CreateAllocationRequest struct {
	EmployeeID     string `json:"employee_id" binding:"required,min=1,max=64"`
	VehicleID      string `json:"vehicle_id" binding:"required,min=1,max=64"`
	AllocationDate string `json:"allocation_date" binding:"required,datetime=2006-01-02"`
}

// CreateAllocationResponse carries the identifier of a newly created
// allocation
type CreateAllocationResponse struct {
	ID string `json:"id"`
}

// UpdateAllocationRequest represents a partial update to an allocation.
// Nil fields are left unchanged.
type UpdateAllocationRequest struct {
	EmployeeID     *string `json:"employee_id" binding:"omitempty,min=1,max=64"`
	AllocationDate *string `json:"allocation_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateAllocationResponse echoes back the fields that were applied
type UpdateAllocationResponse struct {
	EmployeeID     *string `json:"employee_id,omitempty"`
	AllocationDate *string `json:"allocation_date,omitempty"`
}

// AllocationData is the base shape of an allocation record in API
// responses
type AllocationData struct {
	EmployeeID     string `json:"employee_id"`
	VehicleID      string `json:"vehicle_id"`
	AllocationDate string `json:"allocation_date"`
}

// AllocationResponse represents a stored allocation: the record data plus
// its identifier
type AllocationResponse struct {
	ID string `json:"id"`
	AllocationData
}

// HistoryRequest represents the optional filters and pagination window for
// a history query
type HistoryRequest struct {
	EmployeeID *string `form:"employee_id" binding:"omitempty,min=1,max=64"`
	VehicleID  *string `form:"vehicle_id" binding:"omitempty,min=1,max=64"`
	StartDate  *string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    *string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Skip       int     `form:"skip" binding:"omitempty,min=0"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=100"`
}

// HistoryResponse represents one page of allocation history
type HistoryResponse struct {
	Data    []AllocationResponse `json:"data"`
	Total   int64                `json:"total"`
	Skip    int                  `json:"skip"`
	Limit   int                  `json:"limit"`
	HasMore bool                 `json:"has_more"`
}

// toAllocationResponse converts a domain allocation to its response shape
func toAllocationResponse(a *allocation.Allocation) AllocationResponse {
	return AllocationResponse{
		ID: a.ID.String(),
		AllocationData: AllocationData{
			EmployeeID:     a.EmployeeID,
			VehicleID:      a.VehicleID,
			AllocationDate: a.AllocationDate.Format(DateLayout),
		},
	}
}

// parseDate parses a wire-format date into a normalized UTC timestamp
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return allocation.NormalizeDate(t), nil
}
