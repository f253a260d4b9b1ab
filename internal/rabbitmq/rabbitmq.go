package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rescuerunner/runnerboard/internal/event"
)

// DefaultExchange is the topic exchange events are published to.
const DefaultExchange = "runnerboard_topic"

type EventBus struct {
	ch       *amqp.Channel
	exchange string
}

func NewEventBus(ch *amqp.Channel, exchange string) *EventBus {
	return &EventBus{
		ch:       ch,
		exchange: exchange,
	}
}

func (e *EventBus) EmitEvent(ctx context.Context, key string, evt *event.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return e.ch.PublishWithContext(
		ctx,
		e.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}

// Dial connects to url, opens a channel and declares the topic exchange.
// The returned cleanup closes both.
func Dial(url, exchange string) (*amqp.Channel, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
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
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}

	return ch, func() {
		_ = ch.Close()
		_ = conn.Close()
	}, nil
}

// Subscribe binds an exclusive, server-named queue to exchange for each of
// keys and starts consuming from it.
func Subscribe(ch *amqp.Channel, exchange string, keys ...string) (<-chan amqp.Delivery, error) {
	queue, err := ch.QueueDeclare(
		"",
		false,
		false,
		true,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		err = ch.QueueBind(
			queue.Name,
			key,
			exchange,
			false,
			nil,
		)
		if err != nil {
			return nil, err
		}
	}

	return ch.Consume(
		queue.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Discard is an event bus that drops every event.
type Discard struct{}

func (Discard) EmitEvent(context.Context, string, *event.Event) error {
	return nil
}
