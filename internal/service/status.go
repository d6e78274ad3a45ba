package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/events"
)

// transitions lists the statuses reachable from each status through
// UpdateStatus. pending -> sedang_diproses happens only in ConfirmPayment.
var transitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusCancelled},
	enum.OrderStatusProcessing: {enum.OrderStatusCompleted},
}

// CanTransition reports whether an order in status from may be moved to to.
func CanTransition(from, to string) bool {
	if from == enum.OrderStatusPending && to == enum.OrderStatusProcessing {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves an order along the status machine. Completing an order
// that is already selesai is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, outletID, orderID uuid.UUID, target string) (*OrderDetail, error) {
	switch target {
	case enum.OrderStatusProcessing:
		return nil, ErrPaymentRequired
	case enum.OrderStatusPending, enum.OrderStatusCompleted, enum.OrderStatusCancelled:
	default:
		return nil, validation("invalid status")
	}

	store := s.newStore(s.pool)

	detail, err := loadDetail(ctx, store, outletID, orderID)
	if err != nil {
		return nil, err
	}
	from := detail.Order.Status
	if from == enum.OrderStatusCompleted && target == enum.OrderStatusCompleted {
		return detail, nil
	}
	if !CanTransition(from, target) {
		return nil, ErrInvalidTransition
	}

	order, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         orderID,
		OutletID:   outletID,
		Status:     target,
		FromStatus: from,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, upstream("update order status", err)
	}
	detail.Order = order

	e := orderEvent(events.OrderStatusChanged, detail)
	e.PreviousStatus = from
	s.publish(ctx, e)
	return detail, nil
}

// DeleteOrder removes a pending or cancelled order with its items.
func (s *OrderService) DeleteOrder(ctx context.Context, outletID, orderID uuid.UUID) error {
	store := s.newStore(s.pool)

	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return upstream("get order", err)
	}
	if order.Status != enum.OrderStatusPending && order.Status != enum.OrderStatusCancelled {
		return ErrNotDeletable
	}

	if _, err := store.DeleteOrder(ctx, database.DeleteOrderParams{ID: orderID, OutletID: outletID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotDeletable
		}
		return upstream("delete order", err)
	}

	s.publish(ctx, orderEvent(events.OrderDeleted, &OrderDetail{Order: order}))
	return nil
}
