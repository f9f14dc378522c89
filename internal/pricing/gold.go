package pricing

import "github.com/shopspring/decimal"

// WeightPlaces is the number of decimal places gram weights are reported with.
const WeightPlaces = 3

// GoldWeight converts a currency amount into grams at ratePerGram, rounded to
// three decimal places. A non-positive rate yields zero.
func GoldWeight(amount, ratePerGram decimal.Decimal) decimal.Decimal {
	if !ratePerGram.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(ratePerGram).Round(WeightPlaces)
}
