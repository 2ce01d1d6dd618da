package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "tracking.events"

	// Wait window for Return / Confirm
	publishWait = 150 * time.Millisecond
)

// Envelope is the body of every message this service publishes.
type Envelope struct {
	MessageID  string    `json:"message_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type Publisher struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	p := &Publisher{
		url:      url,
		exchange: exchange,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	// enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

func encodeEnvelope(routingKey string, payload any, now time.Time) (string, []byte, error) {
	env := Envelope{
		MessageID:  uuid.NewString(),
		Type:       routingKey,
		OccurredAt: now.UTC(),
		Data:       payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", routingKey, err)
	}
	return env.MessageID, body, nil
}

// PublishEvent wraps payload in an Envelope and publishes it to the topic
// exchange with mandatory + confirms. Unroutable messages are not an error:
// nobody may be subscribed to tracking notifications.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey string, payload any) error {
	if routingKey == "" {
		return errors.New("missing routingKey")
	}
	messageID, body, err := encodeEnvelope(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("publisher channel not ready")
	}

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:   messageID,
			ContentType: "application/json",
			Timestamp:   time.Now().UTC(),
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	// Wait for either Return (NO_ROUTE) or Confirm
	select {
	case <-p.returnCh:
		// a returned message is still confirmed afterwards; drain it
		select {
		case <-p.confirmCh:
		case <-time.After(publishWait):
		}
		return nil
	case conf := <-p.confirmCh:
		if !conf.Ack {
			return errors.New("publish nack")
		}
		return nil
	case <-time.After(publishWait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
