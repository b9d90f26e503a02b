package router

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupJobRouter(e, authMiddleware)
	SetupBidRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupNotificationRouter(e, authMiddleware)
	SetupAffiliateRouter(e, authMiddleware, adminMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupWebSocketRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
