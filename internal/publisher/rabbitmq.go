// Package publisher announces imported news items on a RabbitMQ exchange
// so moderation workers can pick them up.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// ActionImport is the action carried by every message this package sends.
const ActionImport = "import"

// RabbitMQ publishes news items as persistent JSON messages. It satisfies
// storage.Storage so it can sit next to the MongoDB queue.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	mu         sync.Mutex
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// NewRabbitMQ connects and declares a durable direct exchange plus the
// moderation queue bound to it.
func NewRabbitMQ(cfg config.PublisherConfig, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger = logger.With("component", "rabbitmq_publisher")
	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// NewsMessage is the JSON body of a published message.
type NewsMessage struct {
	Action    string         `json:"action"`
	Item      types.NewsItem `json:"item"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publish sends one item.
func (r *RabbitMQ) Publish(ctx context.Context, item *types.NewsItem) error {
	body, err := json.Marshal(NewsMessage{
		Action:    ActionImport,
		Item:      *item,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    item.ID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published news item", "id", item.ID, "source_url", item.SourceURL)
	return nil
}

func (r *RabbitMQ) Name() string { return "rabbitmq" }

// Store publishes every item, stopping at the first failure.
func (r *RabbitMQ) Store(ctx context.Context, items []*types.NewsItem) error {
	for _, item := range items {
		if err := r.Publish(ctx, item); err != nil {
			return &types.StorageError{Backend: r.Name(), Err: err}
		}
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
