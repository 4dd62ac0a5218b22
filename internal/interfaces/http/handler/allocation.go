package handler

import (
	"context"
	"time"

	appalloc "github.com/fleetops/backend/internal/application/allocation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AllocationService defines the application operations the handler depends on
type AllocationService interface {
	Create(ctx context.Context, req appalloc.CreateAllocationRequest) (*appalloc.CreateAllocationResponse, error)
	Update(ctx context.Context, id uuid.UUID, req appalloc.UpdateAllocationRequest) (*appalloc.UpdateAllocationResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByVehicleAndDate(ctx context.Context, vehicleID string, date time.Time) (*appalloc.AllocationResponse, error)
	History(ctx context.Context, req appalloc.HistoryRequest) (*appalloc.HistoryResponse, error)
}

// AllocationHandler handles vehicle allocation API endpoints
type AllocationHandler struct {
	BaseHandler
	service AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(service AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// RegisterRoutes registers allocation routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/allocate/", h.Create)
	rg.GET("/allocation/", h.GetByVehicleAndDate)
	rg.PATCH("/allocation/:id/", h.Update)
	rg.DELETE("/allocation/:id/", h.Delete)
	rg.GET("/history/", h.History)
}

// Create allocates a vehicle to an employee for one calendar date
func (h *AllocationHandler) Create(c *gin.Context) {
	var req appalloc.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByVehicleAndDate returns the allocation for a vehicle on a date
func (h *AllocationHandler) GetByVehicleAndDate(c *gin.Context) {
	var query struct {
		VehicleID string `form:"vehicle_id" binding:"required,min=1,max=64"`
		Date      string `form:"date" binding:"required,datetime=2006-01-02"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	date, err := time.Parse(appalloc.DateLayout, query.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}

	resp, err := h.service.GetByVehicleAndDate(c.Request.Context(), query.VehicleID, date)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update applies a partial update to an allocation
func (h *AllocationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.NotFound(c, "Allocation not found")
		return
	}

	var req appalloc.UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes an allocation
func (h *AllocationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.NotFound(c, "Allocation not found")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// History returns one page of allocation history
func (h *AllocationHandler) History(c *gin.Context) {
	var req appalloc.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.service.History(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
