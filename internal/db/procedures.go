package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Loan procedures are installed by the ledger migrations that own balance
// updates. They return a JSON document describing the outcome and raise
// SQLSTATE P0001 when a business rule rejects the call.

const addLoanPayment = `-- name: AddLoanPayment :one
SELECT add_loan_payment($1, $2, $3, $4, $5, $6)::jsonb
`

type AddLoanPaymentParams struct {
	TenantID  pgtype.UUID    `json:"tenant_id"`
	LoanID    pgtype.UUID    `json:"loan_id"`
	Amount    pgtype.Numeric `json:"amount"`
	Mode      string         `json:"mode"`
	Notes     pgtype.Text    `json:"notes"`
	CreatedBy pgtype.Text    `json:"created_by"`
}

func (q *Queries) AddLoanPayment(ctx context.Context, arg AddLoanPaymentParams) ([]byte, error) {
	row := q.db.QueryRow(ctx, addLoanPayment,
		arg.TenantID,
		arg.LoanID,
		arg.Amount,
		arg.Mode,
		arg.Notes,
		arg.CreatedBy,
	)
	var result []byte
	err := row.Scan(&result)
	return result, err
}

const closeLoan = `-- name: CloseLoan :one
SELECT close_loan($1, $2, $3)::jsonb
`

type CloseLoanParams struct {
	TenantID pgtype.UUID `json:"tenant_id"`
	LoanID   pgtype.UUID `json:"loan_id"`
	ClosedBy pgtype.Text `json:"closed_by"`
}

func (q *Queries) CloseLoan(ctx context.Context, arg CloseLoanParams) ([]byte, error) {
	row := q.db.QueryRow(ctx, closeLoan, arg.TenantID, arg.LoanID, arg.ClosedBy)
	var result []byte
	err := row.Scan(&result)
	return result, err
}
