// Package notifier consumes domain events from the queue and fans them
// out: a notification row per recipient, a change-feed event so live
// sessions see it instantly, and an SMS for payment confirmations.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/metrics"
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/infrastructure/sms"
	"gigspace/internal/realtime"
)

type Worker struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	feed             FeedPublisher
	sms              sms.Sender
}

// FeedPublisher is the slice of the change feed the worker needs.
type FeedPublisher interface {
	Publish(ctx context.Context, topic string, ev changefeed.Event) error
}

func NewWorker(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	feed FeedPublisher,
	smsSender sms.Sender,
) *Worker {
	return &Worker{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		feed:             feed,
		sms:              smsSender,
	}
}

// Run drains deliveries until the channel closes or the context ends.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			w.handleDelivery(ctx, delivery)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var event queue.DomainEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		log.Printf("Notifier Error: dropping undecodable delivery: %v", err)
		delivery.Ack(false)
		return
	}

	if err := w.Process(ctx, event); err != nil {
		log.Printf("Notifier Error: processing %s for %s: %v", event.Type, event.RecipientID, err)
		// One requeue; a second failure drops the delivery.
		delivery.Nack(false, !delivery.Redelivered)
		return
	}

	delivery.Ack(false)
}

// Process turns one domain event into a stored notification and pushes it
// to the recipient's feed topic.
func (w *Worker) Process(ctx context.Context, event queue.DomainEvent) error {
	notification, err := BuildNotification(event)
	if err != nil {
		log.Printf("Notifier: skipping event %q: %v", event.Type, err)
		return nil
	}

	if err := w.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}
	metrics.NotificationsCreated.WithLabelValues(notification.Type).Inc()

	w.publishToFeed(ctx, notification)

	if notification.Type == entity.NotificationPaymentSent {
		w.sendPaymentSMS(ctx, notification)
	}

	return nil
}

// BuildNotification maps a domain event to the notification its
// recipient should see. The payload shape is a strict function of the
// notification type.
func BuildNotification(event queue.DomainEvent) (*entity.Notification, error) {
	if event.RecipientID == "" {
		return nil, fmt.Errorf("event has no recipient")
	}

	notification := &entity.Notification{
		UserID:    event.RecipientID,
		CreatedAt: event.OccurredAt,
	}

	switch event.Type {
	case queue.EventBidPlaced:
		notification.Type = entity.NotificationNewBid
		notification.Payload = entity.NotificationPayload{
			JobID:        event.JobID,
			BidID:        event.BidID,
			FreelancerID: event.ActorID,
		}
	case queue.EventBidAccepted:
		notification.Type = entity.NotificationBidAccepted
		notification.Payload = entity.NotificationPayload{
			JobID:        event.JobID,
			BidID:        event.BidID,
			FreelancerID: event.RecipientID,
		}
	case queue.EventBidRejected:
		notification.Type = entity.NotificationBidRejected
		notification.Payload = entity.NotificationPayload{
			JobID:        event.JobID,
			BidID:        event.BidID,
			FreelancerID: event.RecipientID,
		}
	case queue.EventPaymentSent:
		notification.Type = entity.NotificationPaymentSent
		notification.Payload = entity.NotificationPayload{
			JobID:  event.JobID,
			Amount: event.Amount,
		}
	case queue.EventMessageSent:
		notification.Type = entity.NotificationNewMessage
		notification.Payload = entity.NotificationPayload{
			ConversationID: event.ConversationID,
			MessageID:      event.MessageID,
		}
	case queue.EventOfferMade:
		notification.Type = entity.NotificationNewOffer
		notification.Payload = entity.NotificationPayload{
			ConversationID: event.ConversationID,
			MessageID:      event.MessageID,
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	if !notification.PayloadComplete() {
		return nil, fmt.Errorf("event %q is missing payload fields", event.Type)
	}

	return notification, nil
}

func (w *Worker) publishToFeed(ctx context.Context, notification *entity.Notification) {
	row, err := json.Marshal(notification)
	if err != nil {
		return
	}
	topic := string(realtime.NotificationTopic(notification.UserID))
	ev := changefeed.Event{
		Op:    changefeed.OpInsert,
		Table: changefeed.TableNotifications,
		Row:   row,
	}
	if err := w.feed.Publish(ctx, topic, ev); err != nil {
		log.Printf("Notifier Error: feed publish for notification %s: %v", notification.ID, err)
	}
}

// sendPaymentSMS texts the payout confirmation. SMS failure marks the
// row failed but never blocks the in-app notification.
func (w *Worker) sendPaymentSMS(ctx context.Context, notification *entity.Notification) {
	user, err := w.userRepo.GetByID(ctx, notification.UserID)
	if err != nil || user.Phone == "" {
		return
	}

	body := fmt.Sprintf("You received a payment of $%.2f on GigSpace.", notification.Payload.Amount)
	if err := w.sms.Send(user.Phone, body); err != nil {
		log.Printf("Notifier Error: SMS for notification %s: %v", notification.ID, err)
		notification.Status = "failed"
	} else {
		notification.Status = "delivered"
	}

	if err := w.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Notifier Error: updating delivery status for %s: %v", notification.ID, err)
	}
}
