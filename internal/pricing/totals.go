package pricing

import "github.com/shopspring/decimal"

// Totals is the finalized amount record stored on an order and printed on
// receipts.
type Totals struct {
	Subtotal          decimal.Decimal
	MenuDiscountTotal decimal.Decimal
	ModifierTotal     decimal.Decimal
	TotalDiscount     decimal.Decimal
	TaxAmount         decimal.Decimal
	GratuityAmount    decimal.Decimal
	FinalTotal        decimal.Decimal
	Lines             []LineTotal
}

// SubtotalAfterDiscounts is the taxable base: gross total minus every discount.
func (t Totals) SubtotalAfterDiscounts() decimal.Decimal {
	return t.Subtotal.Add(t.ModifierTotal).Sub(t.TotalDiscount)
}

// OrderDiscountAmount is the order-level part of TotalDiscount.
func (t Totals) OrderDiscountAmount() decimal.Decimal {
	return t.TotalDiscount.Sub(t.MenuDiscountTotal)
}

// Compute runs the full pipeline: resolve items, aggregate the cart, apply the
// order discount, then tax and gratuity.
func Compute(lines []Line, orderDiscount *Discount, rates Rates) Totals {
	cart := Aggregate(lines)
	od := ResolveOrderDiscount(cart.SubtotalWithModifiers(), cart.MenuDiscountTotal, orderDiscount)
	charges := ApplyRates(od.SubtotalAfterDiscounts, rates)
	return Assemble(cart, od, charges)
}

// Assemble combines the intermediate results into Totals.
func Assemble(cart CartSummary, od OrderDiscount, charges Charges) Totals {
	final := od.SubtotalAfterDiscounts.Add(charges.Tax).Add(charges.Gratuity)
	return Totals{
		Subtotal:          cart.Subtotal,
		MenuDiscountTotal: cart.MenuDiscountTotal,
		ModifierTotal:     cart.ModifierTotal,
		TotalDiscount:     od.TotalDiscount,
		TaxAmount:         charges.Tax,
		GratuityAmount:    charges.Gratuity,
		FinalTotal:        nonNegative(final),
		Lines:             cart.Lines,
	}
}
