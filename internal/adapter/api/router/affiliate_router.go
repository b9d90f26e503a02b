package router

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/adapter/api/handler"
	"gigspace/internal/adapter/api/middleware"
)

func SetupAffiliateRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	affiliateHandler := handler.GetAffiliateHandler()

	// Referral links hit this before the visitor has an account.
	e.GET("/v1/affiliates/click/:code", affiliateHandler.TrackClick)

	affiliates := e.Group("/v1/affiliates")
	affiliates.Use(authMiddleware.Authenticate)
	affiliates.GET("/me", affiliateHandler.MyCode)

	adminAffiliates := e.Group("/v1/admin/affiliates")
	adminAffiliates.Use(authMiddleware.Authenticate)
	adminAffiliates.Use(adminMiddleware.AdminOnly)
	adminAffiliates.GET("", affiliateHandler.List)
}
