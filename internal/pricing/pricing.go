// Package pricing turns a cart of menu items into payable order totals.
//
// Every function here is pure: the same lines, discount and rates always produce
// the same totals, and out-of-range inputs are clamped instead of rejected.
// Amounts are whole currency units; percentage results are rounded half away
// from zero at the point they are computed.
package pricing

import (
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is a catalog discount. Only active discounts with the scope the
// caller asks for take part in a computation.
type Discount struct {
	ID     uuid.UUID
	Name   string
	Kind   string // enum.DiscountKindPercentage or enum.DiscountKindFixed
	Scope  string // enum.DiscountScopeMenu or enum.DiscountScopeTotal
	Value  decimal.Decimal
	Active bool
}

// Modifier is a paid add-on. A line selects at most one per category.
type Modifier struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
}

// MenuItem is the catalog view of a sellable item with its optional MENU discount.
type MenuItem struct {
	ID       uuid.UUID
	Name     string
	Category string
	Price    decimal.Decimal
	Discount *Discount
}

// Line is one cart line: an item, how many, and the chosen modifiers.
type Line struct {
	Item      MenuItem
	Quantity  int32
	Modifiers []Modifier
}

// Rates holds the active tax and gratuity percentages (10 means 10%).
// A zero value means no tax or gratuity is active.
type Rates struct {
	Tax      decimal.Decimal
	Gratuity decimal.Decimal
}

// discountAmount returns what d takes off base, or zero when d does not apply.
func discountAmount(d *Discount, scope string, base decimal.Decimal) decimal.Decimal {
	if d == nil || !d.Active || d.Scope != scope {
		return decimal.Zero
	}
	value := nonNegative(d.Value)
	if d.Kind == enum.DiscountKindPercentage {
		return percentOf(base, value)
	}
	return wholeUnits(value)
}

func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return wholeUnits(base.Mul(pct).Div(hundred))
}

func wholeUnits(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
