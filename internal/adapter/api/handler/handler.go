package handler

import (
	"gigspace/internal/infrastructure/changefeed"
	ws "gigspace/internal/infrastructure/websocket"
	"gigspace/internal/realtime"
	"gigspace/internal/usecase"
)

var (
	authHandler         *AuthHandler
	userHandler         *UserHandler
	jobHandler          *JobHandler
	bidHandler          *BidHandler
	chatHandler         *ChatHandler
	notificationHandler *NotificationHandler
	affiliateHandler    *AffiliateHandler
	adminHandler        *AdminHandler
	webSocketHandler    *WebSocketHandler
	healthHandler       *HealthHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	jobUseCase *usecase.JobUseCase,
	bidUseCase *usecase.BidUseCase,
	chatUseCase *usecase.ChatUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	affiliateUseCase *usecase.AffiliateUseCase,
	adminUseCase *usecase.AdminUseCase,
	feed *changefeed.Feed,
	wsManager *ws.Manager,
	rtManager *realtime.Manager,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	jobHandler = NewJobHandler(jobUseCase)
	bidHandler = NewBidHandler(bidUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	affiliateHandler = NewAffiliateHandler(affiliateUseCase)
	adminHandler = NewAdminHandler(adminUseCase, jobUseCase)
	webSocketHandler = NewWebSocketHandler(feed, wsManager, rtManager, chatUseCase, jobUseCase, userUseCase)
	healthHandler = NewHealthHandler(feed, wsManager)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetJobHandler() *JobHandler {
	return jobHandler
}

func GetBidHandler() *BidHandler {
	return bidHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetAffiliateHandler() *AffiliateHandler {
	return affiliateHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
