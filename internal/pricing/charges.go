package pricing

import "github.com/shopspring/decimal"

// Charges are the tax and gratuity computed off the post-discount subtotal.
type Charges struct {
	Tax      decimal.Decimal
	Gratuity decimal.Decimal
}

// ApplyRates computes tax and gratuity independently from the same base.
// Gratuity is not charged on tax.
func ApplyRates(base decimal.Decimal, rates Rates) Charges {
	b := nonNegative(base)
	return Charges{
		Tax:      percentOf(b, nonNegative(rates.Tax)),
		Gratuity: percentOf(b, nonNegative(rates.Gratuity)),
	}
}
