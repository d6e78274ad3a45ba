package pricing

import (
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/shopspring/decimal"
)

// ItemPrice is the resolved per-unit price of one menu item with its modifiers.
type ItemPrice struct {
	MenuPrice          decimal.Decimal
	MenuDiscount       decimal.Decimal // never more than MenuPrice
	EffectiveMenuPrice decimal.Decimal
	ModifierPrice      decimal.Decimal
	UnitPrice          decimal.Decimal // EffectiveMenuPrice + ModifierPrice
}

// ResolveItem computes the effective unit price of item with the given modifier
// selection: max(0, price - menu discount) + sum of modifier prices.
func ResolveItem(item MenuItem, modifiers []Modifier) ItemPrice {
	menuPrice := wholeUnits(nonNegative(item.Price))

	menuDiscount := discountAmount(item.Discount, enum.DiscountScopeMenu, menuPrice)
	if menuDiscount.GreaterThan(menuPrice) {
		menuDiscount = menuPrice
	}
	effective := menuPrice.Sub(menuDiscount)

	modifierPrice := decimal.Zero
	for _, m := range modifiers {
		modifierPrice = modifierPrice.Add(wholeUnits(nonNegative(m.Price)))
	}

	return ItemPrice{
		MenuPrice:          menuPrice,
		MenuDiscount:       menuDiscount,
		EffectiveMenuPrice: effective,
		ModifierPrice:      modifierPrice,
		UnitPrice:          effective.Add(modifierPrice),
	}
}
