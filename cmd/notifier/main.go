package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"gigspace/internal/adapter/repository"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/infrastructure/sms"
	"gigspace/internal/notifier"
	"gigspace/pkg/config"
)

func firebaseCredentials() option.ClientOption {
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		return option.WithCredentialsJSON([]byte(serviceAccountJSON))
	}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		serviceAccountPath = "./service-account.json"
	}
	if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
		log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
	}
	return option.WithCredentialsFile(serviceAccountPath)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, firebaseCredentials())
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

	channel, deliveries, err := queue.Consume(amqpConn, cfg.DomainEventQueue)
	if err != nil {
		log.Fatalf("Failed to start consuming %s: %v", cfg.DomainEventQueue, err)
	}
	defer channel.Close()

	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)

	var smsSender sms.Sender = sms.NopSender{}
	if cfg.SMSEnabled {
		smsSender = sms.NewTwilioSender(cfg.TwilioFromNumber)
	}

	worker := notifier.NewWorker(notificationRepo, userRepo, feed, smsSender)

	log.Printf("Notifier consuming from %s...", cfg.DomainEventQueue)
	worker.Run(ctx, deliveries)
	log.Printf("Notifier shutting down")
}
