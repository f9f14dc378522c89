package repo

import (
	"context"

	"github.com/noah-isme/backend-jewelry/internal/db"
)

// InvoicesTenantQuerier defines the queries used by InvoicesTenantRepo.
type InvoicesTenantQuerier interface {
	GetInvoice(ctx context.Context, arg db.GetInvoiceParams) (db.Invoice, error)
	ListInvoiceItems(ctx context.Context, arg db.ListInvoiceItemsParams) ([]db.InvoiceItem, error)
	GetCustomerPoints(ctx context.Context, arg db.GetCustomerPointsParams) (int64, error)
}

// InvoicesTenantRepo scopes invoice and customer reads to the tenant in context.
type InvoicesTenantRepo struct {
	Q InvoicesTenantQuerier
}

// Get returns a tenant scoped invoice header.
func (r InvoicesTenantRepo) Get(ctx context.Context, id string) (db.Invoice, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return db.Invoice{}, err
	}
	invoiceID, err := idValue(id)
	if err != nil {
		return db.Invoice{}, err
	}
	return r.Q.GetInvoice(ctx, db.GetInvoiceParams{TenantID: tid, ID: invoiceID})
}

// Items returns the line items of a tenant scoped invoice in display order.
func (r InvoicesTenantRepo) Items(ctx context.Context, invoiceID string) ([]db.InvoiceItem, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	iid, err := idValue(invoiceID)
	if err != nil {
		return nil, err
	}
	return r.Q.ListInvoiceItems(ctx, db.ListInvoiceItemsParams{TenantID: tid, InvoiceID: iid})
}

// CustomerPoints returns a customer's loyalty point balance.
func (r InvoicesTenantRepo) CustomerPoints(ctx context.Context, customerID string) (int64, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return 0, err
	}
	cid, err := idValue(customerID)
	if err != nil {
		return 0, err
	}
	return r.Q.GetCustomerPoints(ctx, db.GetCustomerPointsParams{TenantID: tid, ID: cid})
}
