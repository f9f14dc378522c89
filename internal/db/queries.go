package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getShopSettings = `-- name: GetShopSettings :one
SELECT tenant_id, gold_rate, sgst_percent, cgst_percent, updated_at
FROM shop_settings
WHERE tenant_id = $1
`

func (q *Queries) GetShopSettings(ctx context.Context, tenantID pgtype.UUID) (ShopSetting, error) {
	row := q.db.QueryRow(ctx, getShopSettings, tenantID)
	var i ShopSetting
	err := row.Scan(
		&i.TenantID,
		&i.GoldRate,
		&i.SgstPercent,
		&i.CgstPercent,
		&i.UpdatedAt,
	)
	return i, err
}

const getLoyaltySettings = `-- name: GetLoyaltySettings :one
SELECT tenant_id, redemption_conversion_rate, earning_type, flat_points_ratio, percentage_back, is_active
FROM loyalty_settings
WHERE tenant_id = $1 AND is_active
`

func (q *Queries) GetLoyaltySettings(ctx context.Context, tenantID pgtype.UUID) (LoyaltySetting, error) {
	row := q.db.QueryRow(ctx, getLoyaltySettings, tenantID)
	var i LoyaltySetting
	err := row.Scan(
		&i.TenantID,
		&i.RedemptionConversionRate,
		&i.EarningType,
		&i.FlatPointsRatio,
		&i.PercentageBack,
		&i.IsActive,
	)
	return i, err
}

const getInvoice = `-- name: GetInvoice :one
SELECT id, tenant_id, customer_id, invoice_number, cash_discount, sgst_percent, cgst_percent, redeem_points, points_redeemed, status, created_at
FROM invoices
WHERE tenant_id = $1 AND id = $2
`

type GetInvoiceParams struct {
	TenantID pgtype.UUID `json:"tenant_id"`
	ID       pgtype.UUID `json:"id"`
}

func (q *Queries) GetInvoice(ctx context.Context, arg GetInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, getInvoice, arg.TenantID, arg.ID)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.CustomerID,
		&i.InvoiceNumber,
		&i.CashDiscount,
		&i.SgstPercent,
		&i.CgstPercent,
		&i.RedeemPoints,
		&i.PointsRedeemed,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const listInvoiceItems = `-- name: ListInvoiceItems :many
SELECT id, invoice_id, description, net_weight, rate, making_rate, stone_amount
FROM invoice_items
WHERE tenant_id = $1 AND invoice_id = $2
ORDER BY position, id
`

type ListInvoiceItemsParams struct {
	TenantID  pgtype.UUID `json:"tenant_id"`
	InvoiceID pgtype.UUID `json:"invoice_id"`
}

func (q *Queries) ListInvoiceItems(ctx context.Context, arg ListInvoiceItemsParams) ([]InvoiceItem, error) {
	rows, err := q.db.Query(ctx, listInvoiceItems, arg.TenantID, arg.InvoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceItem
	for rows.Next() {
		var i InvoiceItem
		if err := rows.Scan(
			&i.ID,
			&i.InvoiceID,
			&i.Description,
			&i.NetWeight,
			&i.Rate,
			&i.MakingRate,
			&i.StoneAmount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCustomerPoints = `-- name: GetCustomerPoints :one
SELECT loyalty_points
FROM customers
WHERE tenant_id = $1 AND id = $2
`

type GetCustomerPointsParams struct {
	TenantID pgtype.UUID `json:"tenant_id"`
	ID       pgtype.UUID `json:"id"`
}

func (q *Queries) GetCustomerPoints(ctx context.Context, arg GetCustomerPointsParams) (int64, error) {
	row := q.db.QueryRow(ctx, getCustomerPoints, arg.TenantID, arg.ID)
	var loyaltyPoints int64
	err := row.Scan(&loyaltyPoints)
	return loyaltyPoints, err
}

const listMaturingEnrollments = `-- name: ListMaturingEnrollments :many
SELECT e.id, e.maturity_date, e.total_paid, e.accumulated_weight, e.status,
       s.calculation_type, c.name AS customer_name, c.phone AS customer_phone, s.name AS scheme_name
FROM scheme_enrollments e
JOIN schemes s ON s.id = e.scheme_id AND s.tenant_id = e.tenant_id
LEFT JOIN customers c ON c.id = e.customer_id AND c.tenant_id = e.tenant_id
WHERE e.tenant_id = $1
  AND e.status = 'ACTIVE'
  AND e.maturity_date BETWEEN $2 AND $3
ORDER BY e.maturity_date, e.id
`

type ListMaturingEnrollmentsParams struct {
	TenantID pgtype.UUID `json:"tenant_id"`
	FromDate pgtype.Date `json:"from_date"`
	ToDate   pgtype.Date `json:"to_date"`
}

func (q *Queries) ListMaturingEnrollments(ctx context.Context, arg ListMaturingEnrollmentsParams) ([]ListMaturingEnrollmentsRow, error) {
	rows, err := q.db.Query(ctx, listMaturingEnrollments, arg.TenantID, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMaturingEnrollmentsRow
	for rows.Next() {
		var i ListMaturingEnrollmentsRow
		if err := rows.Scan(
			&i.ID,
			&i.MaturityDate,
			&i.TotalPaid,
			&i.AccumulatedWeight,
			&i.Status,
			&i.CalculationType,
			&i.CustomerName,
			&i.CustomerPhone,
			&i.SchemeName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTenantIDs = `-- name: ListTenantIDs :many
SELECT id FROM tenants ORDER BY id
`

func (q *Queries) ListTenantIDs(ctx context.Context) ([]pgtype.UUID, error) {
	rows, err := q.db.Query(ctx, listTenantIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
