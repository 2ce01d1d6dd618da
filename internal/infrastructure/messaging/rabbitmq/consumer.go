package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/baechuer/tracking-service/internal/application/tracking"
	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/metrics"
)

const (
	IngestRoutingKey   = "tracking.ingest"
	DefaultIngestQueue = "tracking-service.ingest"

	maxRetries   = 3
	retryDelayMs = 5000
)

// IngestMessage is an event submitted asynchronously by another service.
type IngestMessage struct {
	ActorID    string         `json:"actor_id"`
	SessionID  string         `json:"session_id"`
	ProductID  string         `json:"product_id"`
	CategoryID string         `json:"category_id"`
	Action     string         `json:"action"`
	Metadata   map[string]any `json:"metadata"`
}

type Recorder interface {
	Record(ctx context.Context, cmd tracking.RecordCmd) (*domain.Event, error)
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeDeadLetter
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeRetry:
		return "retry"
	default:
		return "dead_letter"
	}
}

var errPoison = errors.New("malformed message")

// Consumer records events published on tracking.ingest. Transient store
// failures go through a delayed retry queue; malformed or invalid events
// and exhausted retries are dead-lettered.
type Consumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queue      string
	retryQueue string
	exchange   string
	rec        Recorder
}

func NewConsumer(rabbitURL, exchange, queue string, rec Recorder) (*Consumer, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if queue == "" {
		queue = DefaultIngestQueue
	}

	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c := &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      queue,
		retryQueue: queue + ".retry",
		exchange:   exchange,
		rec:        rec,
	}
	if err := c.declare(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Consumer) declare() error {
	ch := c.channel

	// 1. Main exchange (topic)
	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// 2. DLX (fanout) and DLQ
	dlxName := c.queue + ".dlx"
	if err := ch.ExchangeDeclare(dlxName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dlx: %w", err)
	}
	dlqName := c.queue + ".dlq"
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dlq: %w", err)
	}
	if err := ch.QueueBind(dlqName, "", dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dlq: %w", err)
	}

	// 3. Main queue, rejected messages go to the DLX
	q, err := ch.QueueDeclare(c.queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlxName,
	})
	if err != nil {
		return fmt.Errorf("failed to declare main queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, IngestRoutingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to %s: %w", IngestRoutingKey, err)
	}

	// 4. Retry queue expires messages back into the main queue
	if _, err := ch.QueueDeclare(c.retryQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": c.queue,
		"x-message-ttl":             retryDelayMs,
	}); err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) {
	go c.consume(ctx)
	log.Info().
		Str("queue", c.queue).
		Str("exchange", c.exchange).
		Msg("ingest consumer started")
}

func (c *Consumer) consume(ctx context.Context) {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to start consuming")
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("consumer shutting down")
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Warn().Msg("consumer channel closed")
				return
			}
			c.handleMessage(ctx, msg)
		}
	}
}

func retryCount(h amqp.Table) int {
	switch v := h["x-retry-count"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// process decodes body and records it.
func process(ctx context.Context, rec Recorder, body []byte) (*domain.Event, error) {
	var m IngestMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errPoison, err)
	}
	return rec.Record(ctx, tracking.RecordCmd{
		ActorID:    m.ActorID,
		SessionID:  m.SessionID,
		ProductID:  m.ProductID,
		CategoryID: m.CategoryID,
		Action:     m.Action,
		Metadata:   m.Metadata,
	})
}

func decide(err error, retries int) outcome {
	switch {
	case err == nil:
		return outcomeAck
	case errors.Is(err, errPoison), domain.IsCode(err, domain.CodeValidation):
		return outcomeDeadLetter
	case retries < maxRetries:
		return outcomeRetry
	default:
		return outcomeDeadLetter
	}
}

func (c *Consumer) handleMessage(parent context.Context, msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	retries := retryCount(msg.Headers)
	e, err := process(ctx, c.rec, msg.Body)
	o := decide(err, retries)
	metrics.RecordIngest(o.String())

	switch o {
	case outcomeAck:
		log.Debug().Str("event_id", e.ID).Str("message_id", msg.MessageId).Msg("ingested event")
		msg.Ack(false)

	case outcomeRetry:
		log.Warn().Err(err).Int("retry_count", retries).Msg("ingest failed, scheduling retry")
		headers := make(amqp.Table)
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers["x-retry-count"] = int32(retries + 1)

		pubErr := c.channel.PublishWithContext(ctx,
			"",           // default exchange
			c.retryQueue, // routing key = retry queue name
			false,
			false,
			amqp.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Body,
				Headers:     headers,
				MessageId:   msg.MessageId,
			},
		)
		if pubErr != nil {
			log.Error().Err(pubErr).Msg("failed to publish to retry queue")
			msg.Nack(false, false)
			return
		}
		msg.Ack(false)

	default:
		log.Error().Err(err).Int("retry_count", retries).Str("message_id", msg.MessageId).Msg("dead-lettering ingest message")
		msg.Nack(false, false)
	}
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
