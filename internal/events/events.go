// Package events fans order changes out to the screens, the reporting stream
// and the kitchen. Delivery is best effort: publishing happens after the
// order is committed and a failed publish never fails the request.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type names an order change.
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderPaid          Type = "order.paid"
	OrderStatusChanged Type = "order.status_changed"
	OrderDeleted       Type = "order.deleted"
)

// Item is an order line as the kitchen sees it.
type Item struct {
	Name      string   `json:"name"`
	Quantity  int32    `json:"quantity"`
	Modifiers []string `json:"modifiers,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// Event describes one order change.
type Event struct {
	ID             uuid.UUID `json:"id"`
	Type           Type      `json:"type"`
	OutletID       uuid.UUID `json:"outlet_id"`
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	TableNumber    string    `json:"table_number,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	FinalTotal     string    `json:"final_total,omitempty"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	Items          []Item    `json:"items,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// New stamps an event with an ID and the current time.
func New(t Type, outletID, orderID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OutletID:   outletID,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
