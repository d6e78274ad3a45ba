package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/shopspring/decimal"
)

// CombinedOrder is a read-only view of several pending orders at one table
// that are paid together. It is never stored.
type CombinedOrder struct {
	Label       string
	TableNumber string
	Orders      []*OrderDetail
	Items       []OrderItemDetail // member items, concatenated in label order
	Totals      pricing.Totals
}

// OrderIDs returns the member order ids in label order.
func (c *CombinedOrder) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Orders))
	for i, o := range c.Orders {
		ids[i] = o.Order.ID
	}
	return ids
}

// CombineOrders builds a combined view of the given orders. Every order must
// be pending and at the same table. Amounts are the sum of what each order
// already stores.
func (s *OrderService) CombineOrders(ctx context.Context, outletID uuid.UUID, orderIDs []uuid.UUID) (*CombinedOrder, error) {
	ids := uniqueIDs(orderIDs)
	if len(ids) < 2 {
		return nil, ErrTooFewOrders
	}

	store := s.newStore(s.pool)
	orders, err := store.ListOrdersByIDs(ctx, database.ListOrdersByIDsParams{OutletID: outletID, Ids: ids})
	if err != nil {
		return nil, upstream("list orders", err)
	}
	if len(orders) != len(ids) {
		return nil, ErrOrderNotFound
	}

	byID := make(map[uuid.UUID]database.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	combined := &CombinedOrder{Orders: make([]*OrderDetail, 0, len(ids))}
	labels := make([]string, 0, len(ids))
	totals := make([]pricing.Totals, 0, len(ids))
	for i, id := range ids {
		o := byID[id]
		if o.Status != enum.OrderStatusPending {
			return nil, fmt.Errorf("order %s: %w", o.OrderNumber, ErrInvalidTransition)
		}
		if i == 0 {
			combined.TableNumber = o.TableNumber
		} else if o.TableNumber != combined.TableNumber {
			return nil, ErrTableMismatch
		}

		detail, err := loadItems(ctx, store, o)
		if err != nil {
			return nil, err
		}
		combined.Orders = append(combined.Orders, detail)
		combined.Items = append(combined.Items, detail.Items...)
		labels = append(labels, o.OrderNumber)
		totals = append(totals, storedTotals(detail))
	}

	combined.Label = strings.Join(labels, " + ")
	combined.Totals = pricing.Merge(totals...)
	return combined, nil
}

// CombinedPaymentRequest pays every order of a combined view with one method.
type CombinedPaymentRequest struct {
	OutletID       uuid.UUID
	OrderIDs       []uuid.UUID
	Method         string
	PaymentID      string
	AmountTendered *decimal.Decimal
}

// CombinedPaymentResult lists the orders that were confirmed. On a partial
// failure it holds the orders confirmed before the failing one.
type CombinedPaymentResult struct {
	Combined  *CombinedOrder
	Confirmed []*OrderDetail
	Change    decimal.Decimal
}

// ConfirmCombinedPayment confirms each member order in turn. Orders are paid
// one at a time and confirmations are not undone: if one fails, the orders
// before it stay paid and the result reports them along with the error.
func (s *OrderService) ConfirmCombinedPayment(ctx context.Context, req CombinedPaymentRequest) (*CombinedPaymentResult, error) {
	if !paymentMethods[req.Method] {
		return nil, ErrInvalidPaymentMethod
	}

	combined, err := s.CombineOrders(ctx, req.OutletID, req.OrderIDs)
	if err != nil {
		return nil, err
	}

	result := &CombinedPaymentResult{Combined: combined, Change: decimal.Zero}
	var change decimal.Decimal
	if req.Method == enum.PaymentMethodCash {
		if req.AmountTendered == nil || req.AmountTendered.LessThan(combined.Totals.FinalTotal) {
			return nil, ErrInsufficientPayment
		}
		change = req.AmountTendered.Sub(combined.Totals.FinalTotal)
	}

	last := len(combined.Orders) - 1
	for i, member := range combined.Orders {
		pr := PaymentRequest{
			OutletID:  req.OutletID,
			OrderID:   member.Order.ID,
			Method:    req.Method,
			PaymentID: req.PaymentID,
		}
		if req.Method == enum.PaymentMethodCash {
			// Each order takes exactly its total; the last one carries the change.
			amount := database.ToDecimal(member.Order.FinalTotal)
			if i == last {
				amount = amount.Add(change)
			}
			pr.AmountTendered = &amount
		}

		detail, err := s.ConfirmPayment(ctx, pr)
		if err != nil {
			return result, fmt.Errorf("order %s: %w", member.Order.OrderNumber, err)
		}
		result.Confirmed = append(result.Confirmed, detail)
	}

	result.Change = change
	return result, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
