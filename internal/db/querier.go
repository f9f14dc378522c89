package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	AddLoanPayment(ctx context.Context, arg AddLoanPaymentParams) ([]byte, error)
	CloseLoan(ctx context.Context, arg CloseLoanParams) ([]byte, error)
	GetCustomerPoints(ctx context.Context, arg GetCustomerPointsParams) (int64, error)
	GetInvoice(ctx context.Context, arg GetInvoiceParams) (Invoice, error)
	GetLoyaltySettings(ctx context.Context, tenantID pgtype.UUID) (LoyaltySetting, error)
	GetShopSettings(ctx context.Context, tenantID pgtype.UUID) (ShopSetting, error)
	ListInvoiceItems(ctx context.Context, arg ListInvoiceItemsParams) ([]InvoiceItem, error)
	ListMaturingEnrollments(ctx context.Context, arg ListMaturingEnrollmentsParams) ([]ListMaturingEnrollmentsRow, error)
	ListTenantIDs(ctx context.Context) ([]pgtype.UUID, error)
}

var _ Querier = (*Queries)(nil)
