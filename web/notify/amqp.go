package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allblack/allblack-panel/logger"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSink publishes every event to a durable fanout exchange and waits for
// the broker's publisher confirm.
type AMQPSink struct {
	exchange string

	conn *amqp.Connection
	ch   *amqp.Channel
	acks <-chan amqp.Confirmation
	mu   sync.Mutex // publishes are serialized so acks match in order
}

// DialAMQP connects to url, declares exchange and enables confirms.
func DialAMQP(url string, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	logger.Info("publishing order events to exchange", exchange)
	return &AMQPSink{exchange: exchange, conn: conn, ch: ch, acks: acks}, nil
}

func (s *AMQPSink) Name() string {
	return "amqp"
}

// Notify publishes e as JSON. Menu events are not part of the order feed.
func (s *AMQPSink) Notify(ctx context.Context, e Event) error {
	if e.Type == MenuChanged {
		return nil
	}
	if s.conn == nil || s.conn.IsClosed() {
		return errors.New("amqp connection is closed")
	}
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx, s.exchange, string(e.Type), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return err
	}

	select {
	case conf, ok := <-s.acks:
		if !ok {
			return errors.New("amqp channel closed before confirm")
		}
		if !conf.Ack {
			return errors.New("publish nack from broker")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AMQPSink) Close() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
