package router

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/adapter/api/handler"
	"gigspace/internal/adapter/api/middleware"
)

func SetupJobRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	jobHandler := handler.GetJobHandler()
	bidHandler := handler.GetBidHandler()

	jobs := e.Group("/v1/jobs")
	jobs.Use(authMiddleware.Authenticate)

	jobs.POST("", jobHandler.CreateJob)
	jobs.GET("", jobHandler.ListJobs)
	jobs.GET("/mine", jobHandler.ListMyJobs)
	jobs.GET("/:id", jobHandler.GetJob)
	jobs.PATCH("/:id", jobHandler.UpdateJob)
	jobs.POST("/:id/cancel", jobHandler.CancelJob)
	jobs.POST("/:id/complete", jobHandler.CompleteJob)

	// Bids hang off the job they target.
	jobs.POST("/:id/bids", bidHandler.PlaceBid)
	jobs.GET("/:id/bids", bidHandler.ListBidsByJob)
}
