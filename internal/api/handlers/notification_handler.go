package handlers

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/response"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
)

// NotificationHandler serves the counters polled by clients
type NotificationHandler struct {
	notifications services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Summary handles GET /api/notifications
func (h *NotificationHandler) Summary(c echo.Context) error {
	summary, err := h.notifications.Summary(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}

// Count handles GET /api/notifications/count.
//
// Without parameters it returns the global unread total. ?category= narrows
// it to one category and ?status=all counts read messages as well.
func (h *NotificationHandler) Count(c echo.Context) error {
	category, err := categoryQuery(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	status := c.QueryParam("status")
	if status != "" && status != "unread" && status != "all" {
		return response.BadRequest(c, "status must be unread or all")
	}

	count, err := h.count(c.Request().Context(), category, status == "all")
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, count)
}

func (h *NotificationHandler) count(ctx context.Context, category models.Category, all bool) (int64, error) {
	if category == "" {
		if all {
			summary, err := h.notifications.Summary(ctx)
			if err != nil {
				return 0, err
			}
			var total int64
			for _, counts := range summary.Categories {
				total += counts.Total
			}
			return total, nil
		}
		return h.notifications.TotalUnread(ctx)
	}
	if all {
		return h.notifications.TotalCount(ctx, category)
	}
	return h.notifications.UnreadCount(ctx, category)
}
