package store

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// rabbitFeed implements ChangeFeed over a RabbitMQ fanout exchange.
// Whatever writes to the watched table is expected to publish an event
// (payload ignored) to the <table>.events exchange per change.
type rabbitFeed struct {
	url    string
	logger zerolog.Logger
}

// NewRabbitFeed creates a change feed backed by a RabbitMQ fanout
// exchange.
func NewRabbitFeed(url string, logger zerolog.Logger) ChangeFeed {
	return &rabbitFeed{
		url:    url,
		logger: logger.With().Str("feed", "rabbitmq").Logger(),
	}
}

// Subscribe declares the fanout exchange, binds an exclusive
// auto-delete queue and invokes onChange for every delivery.
func (f *rabbitFeed) Subscribe(ctx context.Context, table string, onChange func()) (Subscription, error) {
	conn, err := amqp.Dial(f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	exchange := table + ".events"
	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := ch.QueueDeclare(
		"",    // server-generated name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, "", exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-deliveries:
				if !ok {
					f.logger.Debug().Str("exchange", exchange).Msg("feed channel closed")
					return
				}
				f.logger.Debug().Str("exchange", exchange).Msg("change event received")
				onChange()
			}
		}
	}()

	f.logger.Info().Str("exchange", exchange).Msg("subscribed to change feed")

	return &rabbitSubscription{conn: conn, ch: ch}, nil
}

// rabbitSubscription closes the channel and connection on unsubscribe.
type rabbitSubscription struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	once sync.Once
}

// Unsubscribe tears down the consumer channel and connection.
func (s *rabbitSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.ch.Close()
		s.conn.Close()
	})
}
