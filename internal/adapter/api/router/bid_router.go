package router

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/adapter/api/handler"
	"gigspace/internal/adapter/api/middleware"
)

func SetupBidRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	bidHandler := handler.GetBidHandler()

	bids := e.Group("/v1/bids")
	bids.Use(authMiddleware.Authenticate)

	bids.GET("/mine", bidHandler.ListMyBids)
	bids.POST("/:id/accept", bidHandler.AcceptBid)
	bids.POST("/:id/reject", bidHandler.RejectBid)
	bids.POST("/:id/withdraw", bidHandler.WithdrawBid)
}
