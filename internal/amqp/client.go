package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Client publishes and consumes ChangeEvents on a fanout exchange.
// Every consumer binds its own exclusive queue so each replica sees every event.
// A closed connection or channel is redialled on the next publish or consume.
type Client struct {
	url          string
	exchangeName string
	source       string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewClient(url, exchangeName, source string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		source:       source,
	}
	if err := client.dialLocked(); err != nil {
		return nil, err
	}
	return client, nil
}

// dialLocked opens a fresh connection and channel and declares the exchange.
func (c *Client) dialLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn, c.channel = conn, channel
	return nil
}

func (c *Client) closeLocked() error {
	var err error
	if c.channel != nil && !c.channel.IsClosed() {
		c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		err = c.conn.Close()
	}
	c.conn, c.channel = nil, nil
	return err
}

// session returns the open channel, redialling when the broker dropped it.
func (c *Client) session() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	_ = c.closeLocked()
	if err := c.dialLocked(); err != nil {
		return nil, err
	}
	slog.Info("Reconnected to AMQP broker", "exchange", c.exchangeName)
	return c.channel, nil
}

// Reconnect drops the current connection and dials a new one.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.closeLocked()
	if err := c.dialLocked(); err != nil {
		return err
	}
	slog.Info("Reconnected to AMQP broker", "exchange", c.exchangeName)
	return nil
}

// Source identifies this process in published events.
func (c *Client) Source() string {
	return c.source
}

// PublishChange publishes a change event with a short timeout.
func (c *Client) PublishChange(ctx context.Context, event *ChangeEvent) error {
	if event.Source == "" {
		event.Source = c.source
	}
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channel, err := c.session()
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName,     // exchange
		event.RoutingKey(), // routing key, ignored by fanout
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Transient,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published change event",
		"entity", event.Entity,
		"action", event.Action,
		"id", event.ID,
		"exchange", c.exchangeName)

	return nil
}

// ConsumeChanges binds an exclusive queue and calls handler for every event until ctx ends.
// ready, if set, runs once the subscription is in place.
func (c *Client) ConsumeChanges(ctx context.Context, ready func(), handler func(*ChangeEvent) error) error {
	channel, err := c.session()
	if err != nil {
		return err
	}

	q, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(q.Name, "", c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := channel.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack (we want manual ack)
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming change events", "queue", q.Name, "exchange", c.exchangeName)
	if ready != nil {
		ready()
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping change event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			event, err := ChangeEventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal change event", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}

			if err := handler(event); err != nil {
				slog.ErrorContext(ctx, "Failed to handle change event",
					"error", err,
					"entity", event.Entity,
					"id", event.ID)
				_ = delivery.Nack(false, false)
				continue
			}

			_ = delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}
