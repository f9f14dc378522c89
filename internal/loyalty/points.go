package loyalty

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RedemptionDiscount converts redeemed points into a currency discount. It is
// zero unless redeem is set, points are positive and settings carry a positive
// conversion rate. Points are not checked against any balance here.
func RedemptionDiscount(redeem bool, points decimal.Decimal, opt Option) decimal.Decimal {
	if !redeem || !points.IsPositive() {
		return decimal.Zero
	}
	settings, ok := opt.Get()
	if !ok || !settings.RedemptionConversionRate.IsPositive() {
		return decimal.Zero
	}
	return points.Mul(settings.RedemptionConversionRate)
}

// PointsToEarn returns the whole points accrued on grandTotal under the
// configured earning policy, floored. Missing settings, an unknown policy or a
// non-positive policy field earn nothing.
func PointsToEarn(grandTotal decimal.Decimal, opt Option) int64 {
	settings, ok := opt.Get()
	if !ok || !grandTotal.IsPositive() {
		return 0
	}
	var earned decimal.Decimal
	switch settings.EarningType {
	case EarningFlat:
		if !settings.FlatPointsRatio.IsPositive() {
			return 0
		}
		earned = grandTotal.Mul(settings.FlatPointsRatio)
	case EarningPercentage:
		if !settings.PercentageBack.IsPositive() {
			return 0
		}
		earned = grandTotal.Mul(settings.PercentageBack).Div(hundred)
	default:
		return 0
	}
	return earned.Floor().IntPart()
}

// PointsValue is the currency value of a points balance at the configured
// conversion rate.
func PointsValue(points int64, opt Option) decimal.Decimal {
	return RedemptionDiscount(true, decimal.NewFromInt(points), opt)
}
