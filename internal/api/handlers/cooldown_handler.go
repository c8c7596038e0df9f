package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/response"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
)

// CooldownHandler serves the cooldown status polled by clients
type CooldownHandler struct {
	cooldowns services.CooldownService
}

// NewCooldownHandler creates a new CooldownHandler
func NewCooldownHandler(cooldowns services.CooldownService) *CooldownHandler {
	return &CooldownHandler{cooldowns: cooldowns}
}

// Status handles GET /api/cooldowns
func (h *CooldownHandler) Status(c echo.Context) error {
	overview, err := h.cooldowns.Status(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, overview)
}
