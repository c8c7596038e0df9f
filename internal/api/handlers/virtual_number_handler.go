package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/response"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
)

// VirtualNumberHandler handles virtual number HTTP requests for the seeded physical number
type VirtualNumberHandler struct {
	lifecycle        services.LifecycleService
	provisioning     services.ProvisioningService
	recovery         services.RecoveryService
	physicalNumberID uint
}

// NewVirtualNumberHandler creates a new VirtualNumberHandler
func NewVirtualNumberHandler(
	lifecycle services.LifecycleService,
	provisioning services.ProvisioningService,
	recovery services.RecoveryService,
	physicalNumberID uint,
) *VirtualNumberHandler {
	return &VirtualNumberHandler{
		lifecycle:        lifecycle,
		provisioning:     provisioning,
		recovery:         recovery,
		physicalNumberID: physicalNumberID,
	}
}

// CreateVirtualNumberRequest represents the request body for creating a virtual number
type CreateVirtualNumberRequest struct {
	Category string `json:"category" validate:"required,category"`
	GeoCode  string `json:"geo_code" validate:"required,geocode"`
}

// DeactivateRequest represents the optional body of a deactivate call
type DeactivateRequest struct {
	DeactivateCalls bool `json:"deactivate_calls"`
}

// List handles GET /api/virtual-numbers
func (h *VirtualNumberHandler) List(c echo.Context) error {
	category, err := categoryQuery(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	filter := repository.VirtualNumberFilter{Category: category}
	if raw := c.QueryParam("include_deleted"); raw != "" {
		includeDeleted, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "include_deleted must be a boolean")
		}
		filter.IncludeDeleted = includeDeleted
	}

	numbers, err := h.lifecycle.List(c.Request().Context(), h.physicalNumberID, filter)
	if err != nil {
		return response.Error(c, err)
	}
	if numbers == nil {
		numbers = []models.VirtualNumberWithUnreadCount{}
	}
	return response.Success(c, numbers)
}

// Create handles POST /api/virtual-numbers
func (h *VirtualNumberHandler) Create(c echo.Context) error {
	var req CreateVirtualNumberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	category, _ := models.ParseCategory(req.Category)

	vn, err := h.provisioning.Create(c.Request().Context(), h.physicalNumberID, category, req.GeoCode)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, vn)
}

// Get handles GET /api/virtual-numbers/:id
func (h *VirtualNumberHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	vn, err := h.lifecycle.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, vn)
}

// Deactivate handles POST /api/virtual-numbers/:id/deactivate
func (h *VirtualNumberHandler) Deactivate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req DeactivateRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}

	vn, err := h.lifecycle.Deactivate(c.Request().Context(), id, req.DeactivateCalls)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, vn)
}

// ToggleMessages handles POST /api/virtual-numbers/:id/toggle-messages
func (h *VirtualNumberHandler) ToggleMessages(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	vn, err := h.lifecycle.ToggleMessageForwarding(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, vn)
}

// ToggleCalls handles POST /api/virtual-numbers/:id/toggle-calls
func (h *VirtualNumberHandler) ToggleCalls(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	vn, err := h.lifecycle.ToggleCallForwarding(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, vn)
}

// Delete handles DELETE /api/virtual-numbers/:id
func (h *VirtualNumberHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	vn, err := h.lifecycle.Delete(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, vn, "virtual number deleted")
}

// Recover handles POST /api/virtual-numbers/recover
func (h *VirtualNumberHandler) Recover(c echo.Context) error {
	result, err := h.recovery.RecoverLastDeleted(c.Request().Context(), h.physicalNumberID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, result, "virtual number recovered")
}
