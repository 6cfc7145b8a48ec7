// Package messaging publishes domain events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQ publishes events to a topic exchange.
type RabbitMQ struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewRabbitMQ dials uri, declares exchange and binds the notifications queue.
func NewRabbitMQ(uri, exchange string, logger *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}

	if err := rmq.setupExchangeAndQueues(); err != nil {
		rmq.Close()
		return nil, fmt.Errorf("failed to setup exchange and queues: %w", err)
	}

	return rmq, nil
}

// Publish sends data as eventType, using the event type as routing key.
func (r *RabbitMQ) Publish(ctx context.Context, eventType string, data any) error {
	env, err := NewEnvelope(eventType, data, time.Now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("publishing event", zap.String("routing_key", eventType))
	return r.channel.PublishWithContext(ctx,
		r.exchange, // exchange
		eventType,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    env.OccurredAt,
		})
}

func (r *RabbitMQ) setupExchangeAndQueues() error {
	err := r.channel.ExchangeDeclare(
		r.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %s: %w", r.exchange, err)
	}

	return r.declareAndBindQueue(NotificationsQueue, []string{
		EventBookingCreated,
		EventPaymentConfirmed,
		EventReceiptReady,
		EventAccountDeleted,
	})
}

func (r *RabbitMQ) declareAndBindQueue(queueName string, routingKeys []string) error {
	queue, err := r.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %s: %w", queueName, err)
	}

	for _, key := range routingKeys {
		if err := r.channel.QueueBind(queue.Name, key, r.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to %s: %w", queueName, key, err)
		}
	}
	return nil
}

// Close closes the channel and the connection.
func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
