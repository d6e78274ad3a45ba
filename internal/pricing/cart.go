package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineTotal is a priced cart line. Gross uses the undiscounted menu price so
// receipts can show subtotal, discount and modifier cost separately.
type LineTotal struct {
	MenuItemID    uuid.UUID
	Quantity      int32
	Price         ItemPrice
	Gross         decimal.Decimal // MenuPrice * qty
	Discount      decimal.Decimal // MenuDiscount * qty
	ModifierTotal decimal.Decimal // ModifierPrice * qty
	Subtotal      decimal.Decimal // UnitPrice * qty
}

// CartSummary is the aggregate of all priced lines.
type CartSummary struct {
	Subtotal          decimal.Decimal
	MenuDiscountTotal decimal.Decimal
	ModifierTotal     decimal.Decimal
	Lines             []LineTotal
}

// SubtotalAfterMenuDiscount is Subtotal - MenuDiscountTotal.
func (s CartSummary) SubtotalAfterMenuDiscount() decimal.Decimal {
	return s.Subtotal.Sub(s.MenuDiscountTotal)
}

// SubtotalWithModifiers is SubtotalAfterMenuDiscount + ModifierTotal.
func (s CartSummary) SubtotalWithModifiers() decimal.Decimal {
	return s.SubtotalAfterMenuDiscount().Add(s.ModifierTotal)
}

// Aggregate prices every line and sums the results. Lines with a quantity
// below one contribute nothing.
func Aggregate(lines []Line) CartSummary {
	summary := CartSummary{
		Subtotal:          decimal.Zero,
		MenuDiscountTotal: decimal.Zero,
		ModifierTotal:     decimal.Zero,
		Lines:             make([]LineTotal, 0, len(lines)),
	}

	for _, line := range lines {
		qty := line.Quantity
		if qty < 0 {
			qty = 0
		}
		q := decimal.NewFromInt32(qty)
		price := ResolveItem(line.Item, line.Modifiers)

		lt := LineTotal{
			MenuItemID:    line.Item.ID,
			Quantity:      qty,
			Price:         price,
			Gross:         price.MenuPrice.Mul(q),
			Discount:      price.MenuDiscount.Mul(q),
			ModifierTotal: price.ModifierPrice.Mul(q),
			Subtotal:      price.UnitPrice.Mul(q),
		}

		summary.Subtotal = summary.Subtotal.Add(lt.Gross)
		summary.MenuDiscountTotal = summary.MenuDiscountTotal.Add(lt.Discount)
		summary.ModifierTotal = summary.ModifierTotal.Add(lt.ModifierTotal)
		summary.Lines = append(summary.Lines, lt)
	}

	return summary
}
