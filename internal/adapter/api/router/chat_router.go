package router

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/adapter/api/handler"
	"gigspace/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.CreateConversation)
	chats.POST("/support", chatHandler.CreateSupportConversation)
	chats.GET("", chatHandler.ListConversations)
	chats.GET("/:id", chatHandler.GetConversation)
	chats.PUT("/:id/read", chatHandler.MarkConversationRead)

	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.GET("/:id/messages", chatHandler.GetMessages)
	chats.POST("/:id/offers", chatHandler.SendOffer)
	chats.PUT("/:id/messages/:messageId/read", chatHandler.MarkMessageRead)
}
