// Package events publishes project change notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/yectos/projects-api/internal/config"
	"go.uber.org/zap"
)

// Routing keys
const (
	ProjectCreated   = "project.created"
	ProjectUpdated   = "project.updated"
	ProjectDeleted   = "project.deleted"
	SnapshotRecorded = "dashboard.snapshot"
)

const publishTimeout = 5 * time.Second

// Publisher sends a JSON payload under a routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

// amqpChannel is the subset of *amqp091.Channel used for publishing
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// New returns an AMQP publisher when enabled and a no-op publisher otherwise
func New(cfg *config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		logger.Info("Event publishing disabled")
		return NoopPublisher{}, nil
	}
	p, err := NewAMQPPublisher(cfg.URL, cfg.Exchange, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AMQPPublisher publishes persistent JSON messages to a topic exchange.
// A channel is not safe for concurrent publishing so access is serialized.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	exchange string
	logger   *zap.Logger

	mu      sync.Mutex
	channel amqpChannel
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("Event publisher connected", zap.String("exchange", exchange))
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

func newPublisherWithChannel(ch amqpChannel, exchange string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, exchange: exchange, logger: logger}
}

// Publish encodes payload as JSON and sends it with persistent delivery
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is still open
func (p *AMQPPublisher) IsConnected() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }
