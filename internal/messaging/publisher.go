package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/events"
)

var ErrNotConnected = errors.New("there is no connection to RabbitMQ")

// Broker is the part of the RabbitMQ client the publisher needs.
type Broker interface {
	IsConnected() bool
	Exchange() string
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Publish sends one message on the current channel.
func (r *RabbitMQClient) Publish(exchange, routingKey string, msg amqp.Publishing) error {
	channel := r.Channel()
	if channel == nil {
		return ErrNotConnected
	}
	return channel.Publish(exchange, routingKey, false, false, msg)
}

type Publisher struct {
	broker Broker
	logger *zap.Logger
}

func NewPublisher(broker Broker, logger *zap.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		logger: logger,
	}
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, event events.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.broker.IsConnected() {
		return ErrNotConnected
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CorrelationID == uuid.Nil {
		event.CorrelationID = uuid.New()
	}
	if event.Service == "" {
		event.Service = events.ServiceName
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %w", err)
	}

	routingKey := event.RoutingKey()
	err = p.broker.Publish(p.broker.Exchange(), routingKey, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			"order_id":       event.OrderID,
			"correlation_id": event.CorrelationID.String(),
			"service":        event.Service,
			"event_type":     string(event.EventType),
		},
	})
	if err != nil {
		return fmt.Errorf("event publish error: %w", err)
	}

	p.logger.Info("event published",
		zap.String("routing_key", routingKey),
		zap.Int64("order_id", event.OrderID),
	)
	return nil
}

// NopPublisher drops events; used when RabbitMQ is disabled.
type NopPublisher struct {
	Logger *zap.Logger
}

func (p NopPublisher) PublishOrderEvent(_ context.Context, event events.OrderEvent) error {
	if p.Logger != nil {
		p.Logger.Debug("event dropped, messaging disabled", zap.String("event_type", string(event.EventType)))
	}
	return nil
}
