package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/infrastructure/changefeed"
	ws "gigspace/internal/infrastructure/websocket"
	"gigspace/pkg/response"
)

type HealthHandler struct {
	feed      *changefeed.Feed
	wsManager *ws.Manager
}

func NewHealthHandler(feed *changefeed.Feed, wsManager *ws.Manager) *HealthHandler {
	return &HealthHandler{
		feed:      feed,
		wsManager: wsManager,
	}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"status":      "ok",
		"feed":        h.feed.Status().String(),
		"connections": h.wsManager.ConnectionCount(),
	})
}
