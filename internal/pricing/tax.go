package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Taxes applies the state and central GST percentages independently to the
// taxable base. A negative base or a negative percentage is treated as zero.
func Taxes(base, sgstPercent, cgstPercent decimal.Decimal) (sgst, cgst decimal.Decimal) {
	taxable := NonNegative(base)
	sgst = taxable.Mul(NonNegative(sgstPercent)).Div(hundred)
	cgst = taxable.Mul(NonNegative(cgstPercent)).Div(hundred)
	return sgst, cgst
}
