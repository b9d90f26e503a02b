package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"gigspace/internal/adapter/api/handler"
	"gigspace/internal/infrastructure/changefeed"
	ws "gigspace/internal/infrastructure/websocket"
)

func TestHealthCheck(t *testing.T) {
	// Setup
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	feed := changefeed.NewFeed(redis.NewClient(&redis.Options{Addr: "localhost:6379"}), 3)
	healthHandler := handler.NewHealthHandler(feed, ws.NewManager())

	// Assertions
	if assert.NoError(t, healthHandler.Health(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}
