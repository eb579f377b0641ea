// Package amqp publishes and consumes budget lifecycle events over
// RabbitMQ. Publishing is best effort from the caller's perspective: the
// budget service treats a failed publish as a warning, never as a failed
// write, and a circuit breaker keeps a flapping broker from slowing the
// request path down.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 3
	openTimeout = 30 * time.Second
)

type Client struct {
	mu           sync.RWMutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	url          string
	exchangeName string
	queueName    string

	// Circuit breaker state. All three fields are accessed from concurrent
	// publishers, so they are only touched through the atomic package;
	// lastFailureNano holds the failure instant as UnixNano for that reason.
	failureCount    int64
	state           int32
	lastFailureNano int64
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setupTopology(channel); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setupTopology(channel *amqp091.Channel) error {
	err := channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key mirrors the queue name on a direct exchange.
	if err := channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// currentChannel reads the channel under the lock; the consumer's
// reconnect loop may swap it out.
func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// PublishBudgetExport publishes a budget export request.
func (c *Client) PublishBudgetExport(ctx context.Context, budgetID, reason string) error {
	body, err := envelope(TypeBudgetExport, NewBudgetExportMessage(budgetID, reason))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published budget export message",
		"budget_id", budgetID, "reason", reason, "exchange", c.exchangeName)
	return nil
}

// PublishBudgetDelete publishes a budget deletion notice.
func (c *Client) PublishBudgetDelete(ctx context.Context, budgetID string) error {
	body, err := envelope(TypeBudgetDelete, NewBudgetDeleteMessage(budgetID))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published budget delete message",
		"budget_id", budgetID, "exchange", c.exchangeName)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return errors.New("circuit breaker is open")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.currentChannel().PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		if isConnectionError(err) {
			c.recordFailure()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	return nil
}

// ExportHandler processes one export request; DeleteHandler one deletion.
type (
	ExportHandler func(ctx context.Context, msg *BudgetExportMessage) error
	DeleteHandler func(ctx context.Context, msg *BudgetDeleteMessage) error
)

// ConsumeMessages runs the delivery loop until the context is cancelled.
// Handler failures nack with requeue, undecodable messages nack without.
// A closed delivery channel (broker restart, dropped connection) triggers
// a reconnect with exponential backoff instead of ending the loop.
func (c *Client) ConsumeMessages(ctx context.Context, onExport ExportHandler, onDelete DeleteHandler) error {
	for {
		msgs, err := c.currentChannel().Consume(
			c.queueName,
			"",    // consumer tag
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("start consuming: %w", err)
		}

		slog.InfoContext(ctx, "Started consuming budget messages", "queue", c.queueName)

		for msgs != nil {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
				return ctx.Err()
			case delivery, ok := <-msgs:
				if !ok {
					slog.WarnContext(ctx, "Delivery channel closed, reconnecting", "queue", c.queueName)
					msgs = nil
				} else {
					c.dispatch(ctx, delivery, onExport, onDelete)
				}
			}
		}

		if err := c.reconnect(ctx); err != nil {
			return err
		}
	}
}

// reconnect redials the broker until it succeeds or the context is
// cancelled, waiting exponentially longer between attempts.
func (c *Client) reconnect(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt)):
		}

		conn, err := amqp091.Dial(c.url)
		if err != nil {
			slog.WarnContext(ctx, "Reconnect dial failed", "error", err, "attempt", attempt)
			continue
		}
		channel, err := conn.Channel()
		if err != nil {
			conn.Close()
			slog.WarnContext(ctx, "Reconnect channel failed", "error", err, "attempt", attempt)
			continue
		}
		if err := c.setupTopology(channel); err != nil {
			conn.Close()
			slog.WarnContext(ctx, "Reconnect topology setup failed", "error", err, "attempt", attempt)
			continue
		}

		c.mu.Lock()
		if c.channel != nil {
			c.channel.Close()
		}
		if c.conn != nil {
			c.conn.Close()
		}
		c.conn, c.channel = conn, channel
		c.mu.Unlock()

		slog.InfoContext(ctx, "Reconnected to broker", "attempts", attempt+1)
		return nil
	}
}

func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, onExport ExportHandler, onDelete DeleteHandler) {
	env, err := DecodeEnvelope(delivery.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to decode message envelope", "error", err)
		delivery.Nack(false, false)
		return
	}

	switch env.Type {
	case TypeBudgetExport:
		var msg BudgetExportMessage
		if err := json.Unmarshal(env.Body, &msg); err != nil {
			slog.ErrorContext(ctx, "Failed to decode export message", "error", err)
			delivery.Nack(false, false)
			return
		}
		if onExport == nil {
			delivery.Ack(false)
			return
		}
		if err := onExport(ctx, &msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle export message",
				"error", err, "budget_id", msg.BudgetID)
			delivery.Nack(false, true)
			return
		}
	case TypeBudgetDelete:
		var msg BudgetDeleteMessage
		if err := json.Unmarshal(env.Body, &msg); err != nil {
			slog.ErrorContext(ctx, "Failed to decode delete message", "error", err)
			delivery.Nack(false, false)
			return
		}
		if onDelete == nil {
			delivery.Ack(false)
			return
		}
		if err := onDelete(ctx, &msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle delete message",
				"error", err, "budget_id", msg.BudgetID)
			delivery.Nack(false, true)
			return
		}
	default:
		slog.WarnContext(ctx, "Unknown message type", "type", env.Type)
		delivery.Nack(false, false)
		return
	}

	delivery.Ack(false)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// exponentialBackoff returns the delay before retry n, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection closed",
		"unexpected EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		lastFailure := time.Unix(0, atomic.LoadInt64(&c.lastFailureNano))
		if time.Since(lastFailure) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordFailure() {
	count := atomic.AddInt64(&c.failureCount, 1)
	atomic.StoreInt64(&c.lastFailureNano, time.Now().UnixNano())
	if count >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}
