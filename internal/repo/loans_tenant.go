package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/db"
)

// LoansTenantQuerier defines the procedure calls used by LoansTenantRepo.
type LoansTenantQuerier interface {
	AddLoanPayment(ctx context.Context, arg db.AddLoanPaymentParams) ([]byte, error)
	CloseLoan(ctx context.Context, arg db.CloseLoanParams) ([]byte, error)
}

// LoansTenantRepo invokes loan procedures on behalf of the tenant in context.
type LoansTenantRepo struct {
	Q LoansTenantQuerier
}

// AddPayment records a payment against a loan and returns the procedure result.
func (r LoansTenantRepo) AddPayment(ctx context.Context, loanID string, amount decimal.Decimal, mode, notes, actor string) ([]byte, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	lid, err := idValue(loanID)
	if err != nil {
		return nil, err
	}
	return r.Q.AddLoanPayment(ctx, db.AddLoanPaymentParams{
		TenantID:  tid,
		LoanID:    lid,
		Amount:    db.DecimalToNumeric(amount),
		Mode:      mode,
		Notes:     db.NullableText(notes),
		CreatedBy: db.NullableText(actor),
	})
}

// Close settles a loan and returns the procedure result.
func (r LoansTenantRepo) Close(ctx context.Context, loanID, actor string) ([]byte, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	lid, err := idValue(loanID)
	if err != nil {
		return nil, err
	}
	return r.Q.CloseLoan(ctx, db.CloseLoanParams{TenantID: tid, LoanID: lid, ClosedBy: db.NullableText(actor)})
}
