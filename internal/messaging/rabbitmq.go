package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const exchangeKind = "topic"

// RabbitMQClient owns one connection and one publishing channel and
// re-dials in the background when the broker drops the connection.
type RabbitMQClient struct {
	config RabbitMQConfig
	logger *zap.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRabbitMQClient(config RabbitMQConfig, logger *zap.Logger) *RabbitMQClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RabbitMQClient{
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the broker, retrying RetryCount times, and declares the
// durable event exchange.
func (r *RabbitMQClient) Connect() error {
	if r.config.RetryCount < 1 {
		return errors.New("rabbitmq retry count must be positive")
	}

	var lastErr error
	for attempt := 1; attempt <= r.config.RetryCount; attempt++ {
		conn, channel, err := r.dial()
		if err == nil {
			r.attach(conn, channel)
			return nil
		}
		lastErr = err

		r.logger.Warn("rabbitmq connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.config.RetryCount),
			zap.Error(err),
		)
		if attempt == r.config.RetryCount {
			break
		}
		if err := r.wait(r.config.RetryDelay); err != nil {
			return err
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ: %w", lastErr)
}

func (r *RabbitMQClient) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(r.config.ConnectionURL(), amqp.Config{
		Dial: amqp.DefaultDial(r.config.ConnectionTimeout),
	})
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(r.config.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", r.config.Exchange, err)
	}
	return conn, channel, nil
}

func (r *RabbitMQClient) attach(conn *amqp.Connection, channel *amqp.Channel) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		channel.Close()
		conn.Close()
		return
	}
	r.conn = conn
	r.channel = channel
	r.mu.Unlock()

	r.logger.Info("connected to rabbitmq",
		zap.String("host", r.config.Host),
		zap.String("exchange", r.config.Exchange),
	)
	go r.watch(conn)
}

// watch re-dials with the configured delay until it succeeds or the
// client is closed.
func (r *RabbitMQClient) watch(conn *amqp.Connection) {
	select {
	case reason := <-conn.NotifyClose(make(chan *amqp.Error, 1)):
		r.logger.Warn("rabbitmq connection lost, reconnecting", zap.Any("reason", reason))
	case <-r.ctx.Done():
		return
	}

	for {
		if err := r.wait(r.config.RetryDelay); err != nil {
			return
		}
		conn, channel, err := r.dial()
		if err != nil {
			r.logger.Error("rabbitmq reconnect failed", zap.Error(err))
			continue
		}
		r.attach(conn, channel)
		return
	}
}

func (r *RabbitMQClient) wait(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

func (r *RabbitMQClient) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

func (r *RabbitMQClient) Exchange() string {
	return r.config.Exchange
}

func (r *RabbitMQClient) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conn != nil && !r.conn.IsClosed()
}

// Close stops reconnection and closes the channel and connection. It is
// safe to call more than once.
func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.cancel()

	var errs []error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("channel close error: %w", err))
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("connection close error: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		r.logger.Error("failed to close rabbitmq connection", zap.Error(err))
		return err
	}
	r.logger.Info("rabbitmq connection closed")
	return nil
}
