package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/service"
)

type NotificationHandler struct {
	Notifications *service.NotificationService
}

func NewNotificationHandler(n *service.NotificationService) *NotificationHandler {
	if n == nil {
		panic("nil service passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's notifications with the unread count.
func (h *NotificationHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Notifications.List(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, actor(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResp{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "All notifications marked as read", "updated": n})
}
