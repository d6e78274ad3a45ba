package pricing

import "github.com/shopspring/decimal"

// Merge sums already-assembled totals field by field and concatenates their
// lines. Nothing is re-priced.
func Merge(totals ...Totals) Totals {
	out := Totals{
		Subtotal:          decimal.Zero,
		MenuDiscountTotal: decimal.Zero,
		ModifierTotal:     decimal.Zero,
		TotalDiscount:     decimal.Zero,
		TaxAmount:         decimal.Zero,
		GratuityAmount:    decimal.Zero,
		FinalTotal:        decimal.Zero,
	}
	for _, t := range totals {
		out.Subtotal = out.Subtotal.Add(t.Subtotal)
		out.MenuDiscountTotal = out.MenuDiscountTotal.Add(t.MenuDiscountTotal)
		out.ModifierTotal = out.ModifierTotal.Add(t.ModifierTotal)
		out.TotalDiscount = out.TotalDiscount.Add(t.TotalDiscount)
		out.TaxAmount = out.TaxAmount.Add(t.TaxAmount)
		out.GratuityAmount = out.GratuityAmount.Add(t.GratuityAmount)
		out.FinalTotal = out.FinalTotal.Add(t.FinalTotal)
		out.Lines = append(out.Lines, t.Lines...)
	}
	return out
}
