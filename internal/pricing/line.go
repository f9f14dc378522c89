package pricing

import "github.com/shopspring/decimal"

// LineItem is a single invoice line after boundary coercion.
type LineItem struct {
	NetWeight   decimal.Decimal
	Rate        decimal.Decimal
	MakingRate  decimal.Decimal
	StoneAmount decimal.Decimal
}

// NewLineItem maps raw field values into a LineItem. Every field goes through
// SafeNumber and negative values are clamped to zero.
func NewLineItem(netWeight, rate, makingRate, stoneAmount any) LineItem {
	return LineItem{
		NetWeight:   NonNegative(SafeNumber(netWeight)),
		Rate:        NonNegative(SafeNumber(rate)),
		MakingRate:  NonNegative(SafeNumber(makingRate)),
		StoneAmount: NonNegative(SafeNumber(stoneAmount)),
	}
}

// LineContribution prices one line: weight times the effective rate, plus
// making charges per gram, plus the flat stone amount. A line without a
// positive rate of its own falls back to fallbackRate.
func LineContribution(item LineItem, fallbackRate decimal.Decimal) decimal.Decimal {
	rate := item.Rate
	if !rate.IsPositive() {
		rate = NonNegative(fallbackRate)
	}
	metal := item.NetWeight.Mul(rate)
	making := item.NetWeight.Mul(item.MakingRate)
	return metal.Add(making).Add(item.StoneAmount)
}

// Subtotal sums LineContribution over items. An empty list totals zero.
func Subtotal(items []LineItem, fallbackRate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineContribution(item, fallbackRate))
	}
	return total
}
