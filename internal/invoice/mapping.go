package invoice

import (
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/loyalty"
	"github.com/noah-isme/backend-jewelry/internal/pricing"
)

// LineItemsFromRows maps stored invoice lines into pricing inputs.
func LineItemsFromRows(rows []db.InvoiceItem) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, pricing.NewLineItem(
			db.NumericToDecimal(row.NetWeight),
			db.NumericToDecimal(row.Rate),
			db.NumericToDecimal(row.MakingRate),
			db.NumericToDecimal(row.StoneAmount),
		))
	}
	return items
}

// LoyaltyFromRow maps a loyalty settings row. Inactive programmes map to None.
func LoyaltyFromRow(row db.LoyaltySetting) loyalty.Option {
	if !row.IsActive {
		return loyalty.None()
	}
	return loyalty.Some(loyalty.Settings{
		RedemptionConversionRate: db.NumericToDecimal(row.RedemptionConversionRate),
		EarningType:              loyalty.ParseEarningType(row.EarningType),
		FlatPointsRatio:          db.NumericToDecimal(row.FlatPointsRatio),
		PercentageBack:           db.NumericToDecimal(row.PercentageBack),
	})
}
