package allocation

import (
	"context"
	"errors"
	"time"

	"github.com/fleetops/backend/internal/domain/allocation"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles allocation business operations. It keeps the persistent
// store authoritative and treats the cache as a derived projection: every
// cache failure degrades to a store read, and every write invalidates the
// affected cache keys after the store has committed.
type Service struct {
	repo   allocation.AllocationRepository
	cache  allocation.AllocationCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a new allocation Service
func NewService(repo allocation.AllocationRepository, cache allocation.AllocationCache, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByVehicleAndDate returns the allocation for a (vehicle, date) pair,
// reading through the cache. Only present records are cached; absence is
// never stored, so a freed date becomes allocatable immediately.
func (s *Service) GetByVehicleAndDate(ctx context.Context, vehicleID string, date time.Time) (*AllocationResponse, error) {
	a, err := s.lookup(ctx, vehicleID, date)
	if err != nil {
		return nil, err
	}

	resp := toAllocationResponse(a)
	return &resp, nil
}

// Create allocates a vehicle to an employee for one calendar date. The
// cached and stored views are both consulted before inserting, and the
// unique index on (vehicle, date) catches racing duplicates that pass the
// pre-check.
func (s *Service) Create(ctx context.Context, req CreateAllocationRequest) (*CreateAllocationResponse, error) {
	date, err := parseDate(req.AllocationDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid allocation date")
	}

	_, err = s.lookup(ctx, req.VehicleID, date)
	if err == nil {
		return nil, allocation.ErrVehicleAlreadyAllocated
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	a, err := allocation.NewAllocation(req.EmployeeID, req.VehicleID, date)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, allocation.ErrVehicleAlreadyAllocated
		}
		return nil, err
	}

	// Drop whatever the cache holds for this key so the next read sees
	// the stored record rather than a stale entry
	s.invalidate(ctx, a.VehicleID, a.AllocationDate)

	return &CreateAllocationResponse{ID: a.ID.String()}, nil
}

// Update applies a partial update to an allocation. Allocations dated
// today or earlier are locked. When the date moves, the cache keys for
// both the old and the new date are invalidated.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateAllocationRequest) (*UpdateAllocationResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.IsLocked(time.Now()) {
		return nil, allocation.ErrAllocationLocked
	}

	oldDate := a.AllocationDate
	dateChanged := false

	if req.EmployeeID != nil {
		if err := a.Reassign(*req.EmployeeID); err != nil {
			return nil, err
		}
	}

	if req.AllocationDate != nil {
		newDate, err := parseDate(*req.AllocationDate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid allocation date")
		}
		if !newDate.Equal(oldDate) {
			a.Reschedule(newDate)
			dateChanged = true
		}
	}

	// An empty patch changes nothing and skips the write, but the key is
	// still invalidated like any other update request.
	if req.EmployeeID == nil && req.AllocationDate == nil {
		s.invalidate(ctx, a.VehicleID, oldDate)
		return &UpdateAllocationResponse{}, nil
	}

	if err := s.repo.Save(ctx, a); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, allocation.ErrVehicleAlreadyAllocated
		}
		return nil, err
	}

	// The old key may hold the pre-update record either way; the new key
	// only needs clearing when the allocation moved onto another date
	s.invalidate(ctx, a.VehicleID, oldDate)
	if dateChanged {
		s.invalidate(ctx, a.VehicleID, a.AllocationDate)
	}

	return &UpdateAllocationResponse{
		EmployeeID:     req.EmployeeID,
		AllocationDate: req.AllocationDate,
	}, nil
}

// Delete removes an allocation. Allocations dated today or earlier are
// locked and cannot be removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if a.IsLocked(time.Now()) {
		return allocation.ErrAllocationLocked
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, a.VehicleID, a.AllocationDate)
	return nil
}

// History returns one page of allocation history matching the request
// filters, ordered by allocation date ascending
func (s *Service) History(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	filter := allocation.HistoryFilter{
		EmployeeID: req.EmployeeID,
		VehicleID:  req.VehicleID,
		Skip:       req.Skip,
		Limit:      req.Limit,
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid start date")
		}
		filter.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid end date")
		}
		filter.EndDate = &end
	}

	records, total, err := s.repo.FindHistory(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]AllocationResponse, 0, len(records))
	for i := range records {
		data = append(data, toAllocationResponse(&records[i]))
	}

	return &HistoryResponse{
		Data:    data,
		Total:   total,
		Skip:    filter.Skip,
		Limit:   filter.Limit,
		HasMore: int64(filter.Skip+filter.Limit) < total,
	}, nil
}

// lookup reads the allocation for a (vehicle, date) pair cache-first. A
// cache error is logged and treated as a miss; a store hit refreshes the
// cache entry.
func (s *Service) lookup(ctx context.Context, vehicleID string, date time.Time) (*allocation.Allocation, error) {
	cached, err := s.cache.Get(ctx, vehicleID, date)
	if err != nil {
		s.logger.Warn("allocation cache read failed, falling back to store",
			zap.String("vehicle_id", vehicleID),
			zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	a, err := s.repo.FindByVehicleAndDate(ctx, vehicleID, date)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, a, s.ttl); err != nil {
		s.logger.Warn("allocation cache write failed",
			zap.String("vehicle_id", vehicleID),
			zap.Error(err))
	}

	return a, nil
}

// invalidate drops the cache entry for a (vehicle, date) pair, logging
// instead of failing when the cache is unavailable
func (s *Service) invalidate(ctx context.Context, vehicleID string, date time.Time) {
	if err := s.cache.Invalidate(ctx, vehicleID, date); err != nil {
		s.logger.Warn("allocation cache invalidation failed",
			zap.String("vehicle_id", vehicleID),
			zap.Time("date", date),
			zap.Error(err))
	}
}
