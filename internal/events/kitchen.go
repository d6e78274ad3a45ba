package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the kitchen publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Ticket is what the kitchen printer receives once an order is paid.
type Ticket struct {
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	TableNumber  string    `json:"table_number"`
	CustomerName string    `json:"customer_name"`
	Items        []Item    `json:"items"`
	PaidAt       time.Time `json:"paid_at"`
}

// KitchenPublisher sends a ticket to the kitchen topic exchange when an order
// is paid. Other events are ignored: the kitchen starts work only on paid
// orders. Routing key: kitchen.<outlet id>.
type KitchenPublisher struct {
	ch       Channel
	exchange string
}

// NewKitchenPublisher declares the exchange and returns the publisher.
func NewKitchenPublisher(ch Channel, exchange string) (*KitchenPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &KitchenPublisher{ch: ch, exchange: exchange}, nil
}

func (p *KitchenPublisher) Publish(ctx context.Context, e Event) error {
	if e.Type != OrderPaid {
		return nil
	}

	body, err := json.Marshal(Ticket{
		OrderID:      e.OrderID,
		OrderNumber:  e.OrderNumber,
		TableNumber:  e.TableNumber,
		CustomerName: e.CustomerName,
		Items:        e.Items,
		PaidAt:       e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, "kitchen."+e.OutletID.String(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.ID.String(),
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish kitchen ticket %s: %w", e.OrderNumber, err)
	}
	return nil
}

func (p *KitchenPublisher) Close() error {
	return p.ch.Close()
}
