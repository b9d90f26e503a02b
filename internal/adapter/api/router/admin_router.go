package router

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/adapter/api/handler"
	"gigspace/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/stats", adminHandler.PlatformStats)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/ban", adminHandler.BanUser)
	admin.POST("/users/:id/unban", adminHandler.UnbanUser)
	admin.DELETE("/jobs/:id", adminHandler.DeleteJob)
}
