package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/loyalty"
)

// CurrencyPlaces is the number of decimal places currency amounts are rounded to.
const CurrencyPlaces = 2

// Input carries everything Calculate needs. The caller resolves settings and
// coerces raw values before building it.
type Input struct {
	Items          []LineItem
	FallbackRate   decimal.Decimal
	SGSTPercent    decimal.Decimal
	CGSTPercent    decimal.Decimal
	CashDiscount   decimal.Decimal
	RedeemPoints   bool
	PointsToRedeem decimal.Decimal
	Loyalty        loyalty.Option
}

// Result is the computed invoice breakdown.
type Result struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxableAmount       decimal.Decimal `json:"taxableAmount"`
	SGSTAmount          decimal.Decimal `json:"sgstAmount"`
	CGSTAmount          decimal.Decimal `json:"cgstAmount"`
	TotalBeforeDiscount decimal.Decimal `json:"totalBeforeDiscount"`
	CashDiscount        decimal.Decimal `json:"cashDiscount"`
	LoyaltyDiscount     decimal.Decimal `json:"loyaltyDiscount"`
	TotalDiscount       decimal.Decimal `json:"totalDiscount"`
	GrandTotal          decimal.Decimal `json:"grandTotal"`
	PointsToEarn        int64           `json:"pointsToEarn"`
}

// Calculate computes an invoice. Tax is levied on the full subtotal; cash and
// loyalty discounts come off after tax. The arithmetic runs at full precision
// and points accrue on the unrounded grand total. Only the emitted tax,
// discount and total fields are rounded to paise, each once.
func Calculate(in Input) Result {
	subtotal := Subtotal(in.Items, in.FallbackRate)
	taxable := NonNegative(subtotal)

	sgst, cgst := Taxes(taxable, in.SGSTPercent, in.CGSTPercent)
	beforeDiscount := taxable.Add(sgst).Add(cgst)

	cash := NonNegative(in.CashDiscount)
	loyaltyDiscount := loyalty.RedemptionDiscount(in.RedeemPoints, in.PointsToRedeem, in.Loyalty)
	totalDiscount := cash.Add(loyaltyDiscount)

	grand := NonNegative(beforeDiscount.Sub(totalDiscount))

	return Result{
		Subtotal:            subtotal,
		TaxableAmount:       taxable,
		SGSTAmount:          sgst.Round(CurrencyPlaces),
		CGSTAmount:          cgst.Round(CurrencyPlaces),
		TotalBeforeDiscount: beforeDiscount.Round(CurrencyPlaces),
		CashDiscount:        cash.Round(CurrencyPlaces),
		LoyaltyDiscount:     loyaltyDiscount.Round(CurrencyPlaces),
		TotalDiscount:       totalDiscount.Round(CurrencyPlaces),
		GrandTotal:          grand.Round(CurrencyPlaces),
		PointsToEarn:        loyalty.PointsToEarn(grand, in.Loyalty),
	}
}
