package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"gigspace/internal/adapter/api"
	"gigspace/internal/adapter/api/handler"
	apimiddleware "gigspace/internal/adapter/api/middleware"
	"gigspace/internal/adapter/api/router"
	"gigspace/internal/adapter/repository"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/firebase"
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/infrastructure/ratelimit"
	ws "gigspace/internal/infrastructure/websocket"
	"gigspace/internal/realtime"
	"gigspace/internal/usecase"
	"gigspace/pkg/config"
)

func firebaseCredentials() option.ClientOption {
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(serviceAccountJSON))
	}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		serviceAccountPath = "./service-account.json"
	}
	if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
		log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
	}

	log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
	return option.WithCredentialsFile(serviceAccountPath)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	opt := firebaseCredentials()

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	feed := changefeed.NewFeed(rdb, cfg.FeedMaxRetries)

	amqpConn, err := amqp.Dial(cfg.AmqpURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer amqpConn.Close()

	eventPublisher, err := queue.NewPublisher(amqpConn, cfg.DomainEventQueue)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	jobRepo := repository.NewFirestoreJobRepository(firestoreClient)
	bidRepo := repository.NewFirestoreBidRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	affiliateRepo := repository.NewFirestoreAffiliateRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
	identityClient := firebase.NewIdentityClient(cfg.FirebaseAPIKey)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	backfiller := realtime.NewRepoBackfiller(chatRepo, notificationRepo, bidRepo)
	readBackend := realtime.NewRepoReadBackend(chatRepo, notificationRepo)
	rtManager := realtime.NewManager(feed, backfiller, readBackend)
	rtManager.StartReconciler(ctx, time.Duration(cfg.ReconcileSeconds)*time.Second)

	wsManager := ws.NewManager()
	wsManager.Start(ctx)

	authUseCase := usecase.NewAuthUseCase(userRepo, affiliateRepo, firebaseAuthClient, identityClient)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	jobUseCase := usecase.NewJobUseCase(jobRepo, bidRepo, userRepo, eventPublisher, rateLimiter)
	bidUseCase := usecase.NewBidUseCase(bidRepo, jobRepo, userRepo, eventPublisher, feed, rateLimiter)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, jobRepo, eventPublisher, feed, rateLimiter)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo)
	affiliateUseCase := usecase.NewAffiliateUseCase(affiliateRepo)
	adminUseCase := usecase.NewAdminUseCase(userRepo, jobRepo, firebaseAuthClient)

	handler.Setup(
		authUseCase,
		userUseCase,
		jobUseCase,
		bidUseCase,
		chatUseCase,
		notificationUseCase,
		affiliateUseCase,
		adminUseCase,
		feed,
		wsManager,
		rtManager,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
