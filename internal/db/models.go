package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ShopSetting struct {
	TenantID    pgtype.UUID        `json:"tenant_id"`
	GoldRate    pgtype.Numeric     `json:"gold_rate"`
	SgstPercent pgtype.Numeric     `json:"sgst_percent"`
	CgstPercent pgtype.Numeric     `json:"cgst_percent"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type LoyaltySetting struct {
	TenantID                 pgtype.UUID    `json:"tenant_id"`
	RedemptionConversionRate pgtype.Numeric `json:"redemption_conversion_rate"`
	EarningType              string         `json:"earning_type"`
	FlatPointsRatio          pgtype.Numeric `json:"flat_points_ratio"`
	PercentageBack           pgtype.Numeric `json:"percentage_back"`
	IsActive                 bool           `json:"is_active"`
}

type Invoice struct {
	ID             pgtype.UUID        `json:"id"`
	TenantID       pgtype.UUID        `json:"tenant_id"`
	CustomerID     pgtype.UUID        `json:"customer_id"`
	InvoiceNumber  string             `json:"invoice_number"`
	CashDiscount   pgtype.Numeric     `json:"cash_discount"`
	SgstPercent    pgtype.Numeric     `json:"sgst_percent"`
	CgstPercent    pgtype.Numeric     `json:"cgst_percent"`
	RedeemPoints   bool               `json:"redeem_points"`
	PointsRedeemed int64              `json:"points_redeemed"`
	Status         string             `json:"status"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

type InvoiceItem struct {
	ID          pgtype.UUID    `json:"id"`
	InvoiceID   pgtype.UUID    `json:"invoice_id"`
	Description pgtype.Text    `json:"description"`
	NetWeight   pgtype.Numeric `json:"net_weight"`
	Rate        pgtype.Numeric `json:"rate"`
	MakingRate  pgtype.Numeric `json:"making_rate"`
	StoneAmount pgtype.Numeric `json:"stone_amount"`
}

type ListMaturingEnrollmentsRow struct {
	ID                pgtype.UUID    `json:"id"`
	MaturityDate      pgtype.Date    `json:"maturity_date"`
	TotalPaid         pgtype.Numeric `json:"total_paid"`
	AccumulatedWeight pgtype.Numeric `json:"accumulated_weight"`
	Status            string         `json:"status"`
	CalculationType   string         `json:"calculation_type"`
	CustomerName      pgtype.Text    `json:"customer_name"`
	CustomerPhone     pgtype.Text    `json:"customer_phone"`
	SchemeName        string         `json:"scheme_name"`
}
