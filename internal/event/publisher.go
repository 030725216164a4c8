package event

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys for test lifecycle events.
const (
	TestStarted     = "test.started"
	TestCompleted   = "test.completed"
	TestCancelled   = "test.cancelled"
	AnalysisViewed  = "test.analysis_viewed"
	UserRegistered  = "user.registered"
	LanguageChanged = "user.language_changed"
)

// Publisher fans test lifecycle events out to a RabbitMQ topic exchange.
// A nil *Publisher is valid and publishes nothing, so RabbitMQ stays
// optional.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends one event using the routing key as topic. Failures are
// logged and swallowed: event delivery is never allowed to fail a user
// action.
func (p *Publisher) Publish(routingKey string, payload any) {
	if p == nil {
		return
	}
	event := map[string]any{
		"type":      routingKey,
		"payload":   payload,
		"timestamp": time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", routingKey, err)
		return
	}
	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("Failed to publish event %s: %v", routingKey, err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
