package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers booking events to RabbitMQ. It dials per publish so a
// broker restart never leaves a poisoned connection behind; callers treat
// every error as non-fatal (stats are a best-effort derived view).
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{
		url: url,
		log: log.With(zap.String("component", "queue_publisher")),
	}
}

func (p *Publisher) BookingAdded(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, QueueBookingAdded, event)
}

func (p *Publisher) BookingRemoved(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, QueueBookingRemoved, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event BookingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("Failed to dial RabbitMQ", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("Failed to open RabbitMQ channel", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		p.log.Warn("Failed to declare queue", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		p.log.Warn("Failed to publish booking event", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}

	p.log.Debug("Booking event published",
		zap.String("queue", queueName),
		zap.String("booking_id", event.BookingID),
	)
	return nil
}
