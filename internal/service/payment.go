package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/events"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/shopspring/decimal"
)

// PaymentRequest confirms payment for one pending order.
//
// DiscountID nil keeps the discount chosen at placement, an empty string
// removes it and any other value replaces it with that active TOTAL discount.
type PaymentRequest struct {
	OutletID       uuid.UUID
	OrderID        uuid.UUID
	Method         string
	PaymentID      string // external reference for non-cash methods
	DiscountID     *string
	AmountTendered *decimal.Decimal // required for CASH
}

var paymentMethods = map[string]bool{
	enum.PaymentMethodCash:     true,
	enum.PaymentMethodQRIS:     true,
	enum.PaymentMethodTransfer: true,
	enum.PaymentMethodCard:     true,
}

// ConfirmPayment re-prices a pending order from its stored lines, records the
// payment and moves it to sedang_diproses.
func (s *OrderService) ConfirmPayment(ctx context.Context, req PaymentRequest) (*OrderDetail, error) {
	if !paymentMethods[req.Method] {
		return nil, ErrInvalidPaymentMethod
	}
	if req.Method == enum.PaymentMethodCash && req.AmountTendered == nil {
		return nil, ErrInsufficientPayment
	}

	var replacement *pricing.Discount
	if req.DiscountID != nil && *req.DiscountID != "" {
		id, err := uuid.Parse(*req.DiscountID)
		if err != nil {
			return nil, ErrInvalidDiscountID
		}
		snap, err := s.catalog.Snapshot(ctx, req.OutletID)
		if err != nil {
			return nil, upstream("load catalog", err)
		}
		d, ok := snap.OrderDiscount(id)
		if !ok {
			return nil, ErrDiscountNotFound
		}
		replacement = d
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, upstream("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	detail, err := loadDetail(ctx, store, req.OutletID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if detail.Order.Status != enum.OrderStatusPending {
		return nil, ErrInvalidTransition
	}

	discount := storedDiscount(detail.Order)
	if req.DiscountID != nil {
		discount = replacement
	}
	totals := pricing.Compute(storedLines(detail.Items), discount, storedRates(detail.Order))

	tendered, change := pgtype.Numeric{}, pgtype.Numeric{}
	if req.Method == enum.PaymentMethodCash {
		if req.AmountTendered.LessThan(totals.FinalTotal) {
			return nil, ErrInsufficientPayment
		}
		tendered = database.ToNumeric(*req.AmountTendered)
		change = database.ToNumeric(req.AmountTendered.Sub(totals.FinalTotal))
	}

	cols := discountColumns(discount)
	order, err := store.ConfirmOrderPayment(ctx, database.ConfirmOrderPaymentParams{
		ID:                req.OrderID,
		OutletID:          req.OutletID,
		DiscountID:        cols.id,
		DiscountName:      cols.name,
		DiscountKind:      cols.kind,
		DiscountValue:     cols.value,
		Subtotal:          database.ToNumeric(totals.Subtotal),
		MenuDiscountTotal: database.ToNumeric(totals.MenuDiscountTotal),
		ModifierTotal:     database.ToNumeric(totals.ModifierTotal),
		TotalDiscount:     database.ToNumeric(totals.TotalDiscount),
		TaxAmount:         database.ToNumeric(totals.TaxAmount),
		GratuityAmount:    database.ToNumeric(totals.GratuityAmount),
		FinalTotal:        database.ToNumeric(totals.FinalTotal),
		PaymentMethod:     pgtype.Text{String: req.Method, Valid: true},
		PaymentID:         optionalText(req.PaymentID),
		AmountTendered:    tendered,
		ChangeAmount:      change,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Another request moved the order since it was read.
			return nil, ErrInvalidTransition
		}
		return nil, upstream("confirm payment", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, upstream("commit tx", err)
	}

	detail.Order = order
	s.metrics.PaymentConfirmed(req.Method, totals.FinalTotal)
	s.publish(ctx, orderEvent(events.OrderPaid, detail))
	return detail, nil
}

// storedLines rebuilds pricing input from an order's line snapshot, so a
// catalog edit after placement never changes what the customer pays.
func storedLines(items []OrderItemDetail) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		item := pricing.MenuItem{
			ID:    it.Item.MenuItemID,
			Name:  it.Item.Name,
			Price: database.ToDecimal(it.Item.MenuPrice),
		}
		if md := database.ToDecimal(it.Item.MenuDiscount); md.IsPositive() {
			item.Discount = &pricing.Discount{
				Kind:   enum.DiscountKindFixed,
				Scope:  enum.DiscountScopeMenu,
				Value:  md,
				Active: true,
			}
		}

		mods := make([]pricing.Modifier, 0, len(it.Modifiers))
		for _, m := range it.Modifiers {
			mods = append(mods, pricing.Modifier{
				ID:         m.ModifierID,
				CategoryID: m.CategoryID,
				Name:       m.Name,
				Price:      database.ToDecimal(m.Price),
			})
		}
		lines = append(lines, pricing.Line{Item: item, Quantity: it.Item.Quantity, Modifiers: mods})
	}
	return lines
}

// storedDiscount returns the TOTAL discount recorded on the order, if any.
func storedDiscount(o database.Order) *pricing.Discount {
	if !o.DiscountID.Valid {
		return nil
	}
	return &pricing.Discount{
		ID:     uuid.UUID(o.DiscountID.Bytes),
		Name:   o.DiscountName.String,
		Kind:   o.DiscountKind.String,
		Scope:  enum.DiscountScopeTotal,
		Value:  database.ToDecimal(o.DiscountValue),
		Active: true,
	}
}

func storedRates(o database.Order) pricing.Rates {
	return pricing.Rates{
		Tax:      database.ToDecimal(o.TaxRate),
		Gratuity: database.ToDecimal(o.GratuityRate),
	}
}

// storedTotals reads the amounts recorded on the order. Lines are rebuilt
// from the stored item snapshot.
func storedTotals(d *OrderDetail) pricing.Totals {
	o := d.Order
	return pricing.Totals{
		Subtotal:          database.ToDecimal(o.Subtotal),
		MenuDiscountTotal: database.ToDecimal(o.MenuDiscountTotal),
		ModifierTotal:     database.ToDecimal(o.ModifierTotal),
		TotalDiscount:     database.ToDecimal(o.TotalDiscount),
		TaxAmount:         database.ToDecimal(o.TaxAmount),
		GratuityAmount:    database.ToDecimal(o.GratuityAmount),
		FinalTotal:        database.ToDecimal(o.FinalTotal),
		Lines:             pricing.Aggregate(storedLines(d.Items)).Lines,
	}
}
