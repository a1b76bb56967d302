package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "desideri.events"

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Connection interface {
	Channel() (Channel, error)
	Close() error
}

type amqpConnection struct {
	conn *amqp.Connection
}

func (c *amqpConnection) Channel() (Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *amqpConnection) Close() error {
	if c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

func Dial(url string) (Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &amqpConnection{conn: conn}, nil
}

// AMQPPublisher sends JSON events to a durable fanout exchange. One channel
// is opened lazily and reused; it is reopened after a publish error.
type AMQPPublisher struct {
	conn     Connection
	exchange string
	log      *slog.Logger

	mu sync.Mutex
	ch Channel
}

func NewAMQPPublisher(conn Connection, exchange string, logger *slog.Logger) *AMQPPublisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{conn: conn, exchange: exchange, log: logger}
}

func (p *AMQPPublisher) channel() (Channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) publish(ctx context.Context, typ string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, typ, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Type:         typ,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		_ = ch.Close()
		p.ch = nil
		return fmt.Errorf("failed to publish %s: %w", typ, err)
	}
	p.log.Debug("event published", "type", typ, "exchange", p.exchange)
	return nil
}

func (p *AMQPPublisher) PublishLineStatus(ctx context.Context, ev LineStatusChanged) error {
	return p.publish(ctx, TypeLineStatusChanged, ev)
}

func (p *AMQPPublisher) PublishOrder(ctx context.Context, ev OrderChanged) error {
	return p.publish(ctx, ev.Type, ev)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	return p.conn.Close()
}
