package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/usecase"
	"gigspace/pkg/response"
	"gigspace/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	notifications, total, err := h.notificationUseCase.List(c.Request().Context(), uid, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, notifications, total, params.Limit, params.Offset)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	uid := c.Get("uid").(string)

	count, err := h.notificationUseCase.CountUnread(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{
		"unread_count": count,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.notificationUseCase.MarkRead(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Notification marked as read",
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.notificationUseCase.MarkAllRead(c.Request().Context(), uid); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "All notifications marked as read",
	})
}

// Dispatch resolves where a tap on the notification should navigate.
func (h *NotificationHandler) Dispatch(c echo.Context) error {
	uid := c.Get("uid").(string)

	notification, route, err := h.notificationUseCase.ResolveDispatch(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"notification": notification,
		"route":        route,
	})
}
