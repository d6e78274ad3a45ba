package pricing

import (
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/shopspring/decimal"
)

// OrderDiscount is the result of applying an order-level (TOTAL) discount.
type OrderDiscount struct {
	// Additional is the order-level part actually applied after capping.
	Additional decimal.Decimal
	// TotalDiscount is menu discounts plus Additional.
	TotalDiscount          decimal.Decimal
	SubtotalAfterDiscounts decimal.Decimal
}

// ResolveOrderDiscount applies at most one TOTAL discount on top of the
// menu-discounted subtotal.
//
// The combined discount is capped at the gross total before any discount
// (subtotalWithModifiers + menuDiscountTotal), which keeps
// SubtotalAfterDiscounts at zero or above. A nil, inactive or MENU-scoped
// discount leaves the menu discounts as the only discount.
func ResolveOrderDiscount(subtotalWithModifiers, menuDiscountTotal decimal.Decimal, d *Discount) OrderDiscount {
	base := nonNegative(subtotalWithModifiers)
	menu := nonNegative(menuDiscountTotal)

	additional := discountAmount(d, enum.DiscountScopeTotal, base)

	total := menu.Add(additional)
	if bound := base.Add(menu); total.GreaterThan(bound) {
		total = bound
	}

	applied := total.Sub(menu)
	return OrderDiscount{
		Additional:             applied,
		TotalDiscount:          total,
		SubtotalAfterDiscounts: base.Sub(applied),
	}
}
