package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/catalog"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/pricing"
)

var (
	nasiGoreng = pricing.MenuItem{ID: uuid.New(), Name: "Nasi Goreng", Price: dec("25000")}
	mieAyam    = pricing.MenuItem{ID: uuid.New(), Name: "Mie Ayam", Price: dec("30000")}
)

// plainSnapshot has no modifiers, discounts or rates.
func plainSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		OutletID: testOutlet,
		Items:    []pricing.MenuItem{nasiGoreng, mieAyam},
	}
}

func placeAt(t *testing.T, env *testEnv, table string, item pricing.MenuItem, qty int32) *OrderDetail {
	t.Helper()
	detail, err := env.svc.PlaceOrder(context.Background(), OrderRequest{
		OutletID:     testOutlet,
		Source:       enum.OrderSourceCustomer,
		CustomerName: "Sari",
		TableNumber:  table,
		Items:        []OrderItemRequest{{MenuItemID: item.ID.String(), Quantity: qty}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return detail
}

func TestCombineOrders(t *testing.T) {
	env := newTestEnv(plainSnapshot())
	a := placeAt(t, env, "5", nasiGoreng, 2) // 50000
	b := placeAt(t, env, "5", mieAyam, 1)    // 30000

	combined, err := env.svc.CombineOrders(context.Background(), testOutlet, []uuid.UUID{a.Order.ID, b.Order.ID})
	if err != nil {
		t.Fatalf("combine: %v", err)
	}

	if combined.Label != "KWR-001 + KWR-002" {
		t.Errorf("label: got %q", combined.Label)
	}
	if combined.TableNumber != "5" {
		t.Errorf("table: got %q", combined.TableNumber)
	}
	if !combined.Totals.FinalTotal.Equal(dec("80000")) || !combined.Totals.Subtotal.Equal(dec("80000")) {
		t.Errorf("totals: final %s, subtotal %s", combined.Totals.FinalTotal, combined.Totals.Subtotal)
	}
	if ids := combined.OrderIDs(); len(ids) != 2 || ids[0] != a.Order.ID {
		t.Errorf("order ids: %v", ids)
	}
	if len(combined.Orders[0].Items) != 1 {
		t.Errorf("items not loaded: %+v", combined.Orders[0])
	}
}

func TestCombineOrders_ConcatenatesLines(t *testing.T) {
	env := newTestEnv(plainSnapshot())
	a, err := env.svc.PlaceOrder(context.Background(), OrderRequest{
		OutletID:     testOutlet,
		Source:       enum.OrderSourceCashier,
		CustomerName: "Budi",
		TableNumber:  "5",
		Items: []OrderItemRequest{
			{MenuItemID: nasiGoreng.ID.String(), Quantity: 2},
			{MenuItemID: mieAyam.ID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	b := placeAt(t, env, "5", mieAyam, 3)

	combined, err := env.svc.CombineOrders(context.Background(), testOutlet, []uuid.UUID{a.Order.ID, b.Order.ID})
	if err != nil {
		t.Fatalf("combine: %v", err)
	}

	want := len(a.Items) + len(b.Items)
	if len(combined.Items) != want {
		t.Fatalf("items: got %d, want %d", len(combined.Items), want)
	}
	if len(combined.Totals.Lines) != want {
		t.Fatalf("total lines: got %d, want %d", len(combined.Totals.Lines), want)
	}

	last := combined.Totals.Lines[want-1]
	if last.MenuItemID != mieAyam.ID || last.Quantity != 3 || !last.Subtotal.Equal(dec("90000")) {
		t.Errorf("last line: %+v", last)
	}
	if combined.Items[0].Item.OrderID != a.Order.ID || combined.Items[want-1].Item.OrderID != b.Order.ID {
		t.Error("items not in label order")
	}
}

func TestCombineOrders_Rejected(t *testing.T) {
	env := newTestEnv(plainSnapshot())
	a := placeAt(t, env, "5", nasiGoreng, 1)
	b := placeAt(t, env, "5", mieAyam, 1)
	other := placeAt(t, env, "9", mieAyam, 1)
	cancelled := placeAt(t, env, "5", mieAyam, 1)
	if _, err := env.svc.UpdateStatus(context.Background(), testOutlet, cancelled.Order.ID, enum.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	tests := []struct {
		name string
		ids  []uuid.UUID
		want error
	}{
		{"single order", []uuid.UUID{a.Order.ID}, ErrTooFewOrders},
		{"same order twice", []uuid.UUID{a.Order.ID, a.Order.ID}, ErrTooFewOrders},
		{"different tables", []uuid.UUID{a.Order.ID, other.Order.ID}, ErrTableMismatch},
		{"not pending", []uuid.UUID{a.Order.ID, b.Order.ID, cancelled.Order.ID}, ErrStateTransition},
		{"unknown order", []uuid.UUID{a.Order.ID, uuid.New()}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.CombineOrders(context.Background(), testOutlet, tt.ids); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfirmCombinedPayment_Cash(t *testing.T) {
	env := newTestEnv(plainSnapshot())
	a := placeAt(t, env, "5", nasiGoreng, 2)
	b := placeAt(t, env, "5", mieAyam, 1)

	result, err := env.svc.ConfirmCombinedPayment(context.Background(), CombinedPaymentRequest{
		OutletID:       testOutlet,
		OrderIDs:       []uuid.UUID{a.Order.ID, b.Order.ID},
		Method:         enum.PaymentMethodCash,
		AmountTendered: cash("100000"),
	})
	if err != nil {
		t.Fatalf("combined payment: %v", err)
	}
	if len(result.Confirmed) != 2 {
		t.Fatalf("confirmed: got %d, want 2", len(result.Confirmed))
	}
	if !result.Change.Equal(dec("20000")) {
		t.Errorf("change: got %s, want 20000", result.Change)
	}

	first, last := result.Confirmed[0].Order, result.Confirmed[1].Order
	if !numericEquals(first.AmountTendered, "50000") || !numericEquals(first.ChangeAmount, "0") {
		t.Errorf("first order: tendered %s, change %s", database.ToDecimal(first.AmountTendered), database.ToDecimal(first.ChangeAmount))
	}
	if !numericEquals(last.AmountTendered, "50000") || !numericEquals(last.ChangeAmount, "20000") {
		t.Errorf("last order: tendered %s, change %s", database.ToDecimal(last.AmountTendered), database.ToDecimal(last.ChangeAmount))
	}
	for _, id := range []uuid.UUID{a.Order.ID, b.Order.ID} {
		if s := env.store.status(id); s != enum.OrderStatusProcessing {
			t.Errorf("order %s: status %q", id, s)
		}
	}
}

func TestConfirmCombinedPayment_InsufficientCash(t *testing.T) {
	env := newTestEnv(plainSnapshot())
	a := placeAt(t, env, "5", nasiGoreng, 2)
	b := placeAt(t, env, "5", mieAyam, 1)

	_, err := env.svc.ConfirmCombinedPayment(context.Background(), CombinedPaymentRequest{
		OutletID:       testOutlet,
		OrderIDs:       []uuid.UUID{a.Order.ID, b.Order.ID},
		Method:         enum.PaymentMethodCash,
		AmountTendered: cash("79999"),
	})
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("got %v, want ErrInsufficientPayment", err)
	}
	if len(env.store.confirmations) != 0 {
		t.Error("orders confirmed despite insufficient cash")
	}
}

func TestConfirmCombinedPayment_PartialFailure(t *testing.T) {
	env := newTestEnv(plainSnapshot())
	a := placeAt(t, env, "5", nasiGoreng, 2)
	b := placeAt(t, env, "5", mieAyam, 1)

	env.store.confirmFn = func(ctx context.Context, arg database.ConfirmOrderPaymentParams) (database.Order, error) {
		if arg.ID == b.Order.ID {
			return database.Order{}, errors.New("connection reset")
		}
		return database.Order{}, nil
	}

	result, err := env.svc.ConfirmCombinedPayment(context.Background(), CombinedPaymentRequest{
		OutletID: testOutlet,
		OrderIDs: []uuid.UUID{a.Order.ID, b.Order.ID},
		Method:   enum.PaymentMethodQRIS,
	})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("got %v, want ErrUpstream", err)
	}
	if result == nil || len(result.Confirmed) != 1 || result.Confirmed[0].Order.ID != a.Order.ID {
		t.Fatalf("partial result: %+v", result)
	}
	if s := env.store.status(a.Order.ID); s != enum.OrderStatusProcessing {
		t.Errorf("first order: status %q, want sedang_diproses", s)
	}
	if s := env.store.status(b.Order.ID); s != enum.OrderStatusPending {
		t.Errorf("second order: status %q, want pending", s)
	}
}
