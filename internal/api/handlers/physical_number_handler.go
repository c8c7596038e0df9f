package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/response"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/validator"
)

// PhysicalNumberHandler handles physical number HTTP requests
type PhysicalNumberHandler struct {
	physicalRepo     repository.PhysicalNumberRepository
	lifecycle        services.LifecycleService
	physicalNumberID uint
}

// NewPhysicalNumberHandler creates a new PhysicalNumberHandler
func NewPhysicalNumberHandler(physicalRepo repository.PhysicalNumberRepository, lifecycle services.LifecycleService, physicalNumberID uint) *PhysicalNumberHandler {
	return &PhysicalNumberHandler{
		physicalRepo:     physicalRepo,
		lifecycle:        lifecycle,
		physicalNumberID: physicalNumberID,
	}
}

// Get handles GET /api/physical-number
func (h *PhysicalNumberHandler) Get(c echo.Context) error {
	pn, err := h.physicalRepo.GetByID(c.Request().Context(), h.physicalNumberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "physical number not found")
		}
		return response.InternalError(c, "failed to get physical number")
	}
	return response.Success(c, pn)
}

// ListVirtualNumbers handles GET /api/physical-numbers/:id/virtual-numbers
func (h *PhysicalNumberHandler) ListVirtualNumbers(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.physicalRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "physical number not found")
		}
		return response.InternalError(c, "failed to get physical number")
	}

	numbers, err := h.lifecycle.List(ctx, id, repository.VirtualNumberFilter{})
	if err != nil {
		return response.Error(c, err)
	}
	if numbers == nil {
		numbers = []models.VirtualNumberWithUnreadCount{}
	}
	return response.Success(c, numbers)
}

// Lookup handles GET /api/lookup/:number
func (h *PhysicalNumberHandler) Lookup(c echo.Context) error {
	number := c.Param("number")
	if err := validator.ValidateNumber(number); err != nil {
		return response.BadRequest(c, "number must be a phone number")
	}

	pn, err := h.physicalRepo.GetByVirtualNumber(c.Request().Context(), number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "virtual number not found")
		}
		return response.InternalError(c, "failed to look up virtual number")
	}
	return response.Success(c, pn)
}
