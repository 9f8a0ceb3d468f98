package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Buggy1111/tlacenka/internal/dal/rabbitmq"
	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// EventPublisher publishes order lifecycle events to an AMQP queue for
// downstream consumers (audit, fulfillment). Publishing is best-effort.
type EventPublisher struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

type eventEnvelope struct {
	Event      order.Event `json:"event"`
	Order      order.Order `json:"order"`
	OccurredAt time.Time   `json:"occurredAt"`
}

func NewEventPublisher(client *rabbitmq.Client) (*EventPublisher, error) {
	queueName := viper.GetString("rabbitmq.events_queue")
	if queueName == "" {
		queueName = "tlacenka.order.events"
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare events queue: %w", err)
	}

	return &EventPublisher{
		client: client,
		queue:  queue,
	}, nil
}

// Publish sends the event as JSON to the declared queue.
func (p *EventPublisher) Publish(ctx context.Context, event order.Event, o order.Order) error {
	payload, err := json.Marshal(eventEnvelope{
		Event:      event,
		Order:      o,
		OccurredAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Channel().Publish(
		"",
		p.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}
