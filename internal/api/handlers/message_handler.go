package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
)

// MessageHandler handles message-related HTTP requests
type MessageHandler struct {
	router services.MessageRouter
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(router services.MessageRouter) *MessageHandler {
	return &MessageHandler{router: router}
}

// InboundRequest is a message handed over by the carrier
type InboundRequest struct {
	VirtualNumber string `json:"virtual_number" validate:"required,max=20"`
	SenderName    string `json:"sender_name" validate:"required,max=100"`
	Message       string `json:"message" validate:"required,max=4096"`
}

// InboundResponse is returned for every well-formed inbound message,
// stored or dropped alike
type InboundResponse struct {
	Accepted bool `json:"accepted"`
}

// List handles GET /api/messages
func (h *MessageHandler) List(c echo.Context) error {
	category, err := categoryQuery(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	messages, err := h.router.List(c.Request().Context(), category)
	if err != nil {
		return response.Error(c, err)
	}
	if messages == nil {
		messages = []models.MessageListItem{}
	}
	return response.Success(c, messages)
}

// MarkAsRead handles PATCH /api/messages/:id/read
func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	changed, err := h.router.MarkRead(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	if !changed {
		return response.SuccessWithMessage(c, nil, "message already read")
	}
	return response.SuccessWithMessage(c, nil, "message marked as read")
}

// Delete handles DELETE /api/messages/:id
func (h *MessageHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.router.DeleteMessage(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// Inbound handles POST /api/inbound
func (h *MessageHandler) Inbound(c echo.Context) error {
	var req InboundRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	// A nil message means the router dropped it; the caller is not told.
	if _, err := h.router.Ingest(c.Request().Context(), req.VirtualNumber, req.SenderName, req.Message); err != nil {
		if apperrors.IsValidation(err) {
			return response.BadRequest(c, err.Error())
		}
		return response.Error(c, err)
	}
	return response.Accepted(c, InboundResponse{Accepted: true})
}
