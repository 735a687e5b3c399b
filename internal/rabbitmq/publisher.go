// Package rabbitmq publishes booking events to durable queues as an
// alternative to Kafka.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	conn *amqp.Connection
	ch   channel
	log  *zap.Logger

	mu       sync.Mutex
	declared map[string]bool
}

func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	p := newPublisher(ch, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{ch: ch, log: log, declared: make(map[string]bool)}
}

// Publish sends payload as a persistent JSON message to the queue named
// topic via the default exchange, declaring the queue on first use.
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload any) error {
	if err := p.declare(topic); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}

	p.log.Debug("published to rabbitmq", zap.String("queue", topic), zap.String("key", key))
	return nil
}

func (p *Publisher) declare(queue string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declared[queue] {
		return nil
	}
	if _, err := p.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}
	p.declared[queue] = true
	return nil
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
