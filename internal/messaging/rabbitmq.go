package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// eventsExchange is the fanout exchange every dashboard instance publishes
// storage mutations to and consumes them from.
const eventsExchange = "storage.events"

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// StorageEvent announces that a key changed in one instance's store. Origin
// identifies the publishing instance so it can ignore its own events.
type StorageEvent struct {
	Key       string `json:"key"`
	Origin    string `json:"origin"`
	Timestamp int64  `json:"timestamp"`
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		channel: ch,
	}

	if err := rmq.Setup(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

// NewRabbitMQWithRetry dials the broker until it succeeds or the context is
// cancelled. Useful at startup when the broker container is still warming up.
func NewRabbitMQWithRetry(ctx context.Context, url string) (*RabbitMQ, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		rmq, err := NewRabbitMQ(url)
		if err == nil {
			return rmq, nil
		}
		lastErr = err

		slog.Warn("rabbitmq connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to RabbitMQ: %w", lastErr)
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *RabbitMQ) Setup() error {
	if err := r.channel.ExchangeDeclare(
		eventsExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}

	slog.Info("rabbitmq setup completed successfully")
	return nil
}

// PublishEvent broadcasts a storage mutation to every other instance.
func (r *RabbitMQ) PublishEvent(ctx context.Context, ev *StorageEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal storage event: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		eventsExchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish storage event: %w", err)
	}

	slog.Debug("published storage event",
		slog.String("key", ev.Key),
		slog.String("origin", ev.Origin))
	return nil
}

// consumeEvents binds an anonymous auto-delete queue to the events exchange
// so this instance receives every published mutation.
func (r *RabbitMQ) consumeEvents() (<-chan amqp.Delivery, error) {
	queue, err := r.channel.QueueDeclare(
		"",    // auto-generated name
		false, // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare events queue: %w", err)
	}

	if err := r.channel.QueueBind(
		queue.Name,
		"",
		eventsExchange,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to bind events queue: %w", err)
	}

	msgs, err := r.channel.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register events consumer: %w", err)
	}

	slog.Info("started consuming storage events",
		slog.String("queue", queue.Name),
		slog.String("exchange", eventsExchange))
	return msgs, nil
}

func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
