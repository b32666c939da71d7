package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ.  A connection is dialed per
// publish; reservations are rare enough that pooling is not worth the
// reconnect handling.  Errors are logged and returned so callers can
// ignore them without interrupting the request.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log.Named("publisher")}
}

// PublishReservationCreated publishes ev to ReservationCreatedQueue as a
// persistent JSON message.
func (p *Publisher) PublishReservationCreated(ctx context.Context, ev ReservationCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.publish(ctx, ReservationCreatedQueue, body); err != nil {
		p.log.Warn("publish failed", zap.String("queue", ReservationCreatedQueue),
			zap.Uint64("reservation_id", ev.ReservationID), zap.Error(err))
		return err
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Discard is a publisher used when the broker is disabled.
type Discard struct{}

// PublishReservationCreated does nothing.
func (Discard) PublishReservationCreated(context.Context, ReservationCreatedEvent) error { return nil }
