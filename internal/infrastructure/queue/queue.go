// Package queue carries domain events from the API to the notifier over
// RabbitMQ. The queue decouples request latency from notification
// fan-out: publishing is fire-and-forget, the worker does the rest.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Domain event types. Each one fans out to a notification for the party
// on the other side of the action.
const (
	EventBidPlaced   = "bid.placed"
	EventBidAccepted = "bid.accepted"
	EventBidRejected = "bid.rejected"
	EventPaymentSent = "payment.sent"
	EventMessageSent = "message.sent"
	EventOfferMade   = "offer.made"
)

// DomainEvent is the envelope published for every notification-worthy
// action. RecipientID is who gets notified; ActorID is who acted.
type DomainEvent struct {
	Type           string    `json:"type"`
	ActorID        string    `json:"actor_id"`
	RecipientID    string    `json:"recipient_id"`
	JobID          string    `json:"job_id,omitempty"`
	BidID          string    `json:"bid_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	Amount         float64   `json:"amount,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher sends domain events to a durable queue.
type Publisher struct {
	channel *amqp.Channel
	queue   string
}

func NewPublisher(conn *amqp.Connection, queueName string) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		return nil, err
	}

	return &Publisher{
		channel: channel,
		queue:   queueName,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, event DomainEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// Consume opens a delivery stream on the event queue. Deliveries must be
// acked by the caller; rejected ones are requeued once.
func Consume(conn *amqp.Connection, queueName string) (*amqp.Channel, <-chan amqp.Delivery, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	_, err = channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		return nil, nil, err
	}

	if err := channel.Qos(10, 0, false); err != nil {
		channel.Close()
		return nil, nil, err
	}

	deliveries, err := channel.Consume(
		queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		return nil, nil, err
	}

	return channel, deliveries, nil
}
