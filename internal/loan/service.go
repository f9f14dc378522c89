// Package loan forwards gold-loan operations to the database procedures that
// own their bookkeeping.
package loan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/repo"
)

// ErrLoanNotFound is returned when the procedure reports an unknown loan.
var ErrLoanNotFound = errors.New("loan: not found")

type procedures interface {
	AddPayment(ctx context.Context, loanID string, amount decimal.Decimal, mode, notes, actor string) ([]byte, error)
	Close(ctx context.Context, loanID, actor string) ([]byte, error)
}

// Service invokes loan procedures for the tenant in context.
type Service struct {
	procs   procedures
	timeout time.Duration
	logger  zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Procedures procedures
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{procs: cfg.Procedures, timeout: cfg.Timeout, logger: obs.Component(cfg.Logger, "loan")}
}

// Payment is a repayment against a loan.
type Payment struct {
	Amount decimal.Decimal
	Mode   string
	Notes  string
}

// AddPayment records p and returns the procedure's result document.
func (s *Service) AddPayment(ctx context.Context, loanID string, p Payment, actor string) (json.RawMessage, error) {
	if !p.Amount.IsPositive() {
		return nil, common.NewAppError("INVALID_AMOUNT", "amount must be greater than zero", http.StatusUnprocessableEntity, nil)
	}
	return s.call(ctx, "add_loan_payment", loanID, func(ctx context.Context) ([]byte, error) {
		return s.procs.AddPayment(ctx, loanID, p.Amount, p.Mode, p.Notes, actor)
	})
}

// Close settles a loan and returns the procedure's result document.
func (s *Service) Close(ctx context.Context, loanID, actor string) (json.RawMessage, error) {
	return s.call(ctx, "close_loan", loanID, func(ctx context.Context) ([]byte, error) {
		return s.procs.Close(ctx, loanID, actor)
	})
}

func (s *Service) call(ctx context.Context, procedure, loanID string, fn func(context.Context) ([]byte, error)) (json.RawMessage, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err := fn(ctx)
	if err != nil {
		classified := repo.Classify(err)
		var appErr *common.AppError
		switch {
		case errors.As(classified, &appErr) && appErr.HTTPStatus == http.StatusNotFound:
			obs.CountProcedureCall(procedure, "not_found")
			return nil, common.NewAppError("LOAN_NOT_FOUND", "loan not found", http.StatusNotFound, errors.Join(ErrLoanNotFound, err))
		case errors.As(classified, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError:
			obs.CountProcedureCall(procedure, "rejected")
			s.logger.Info().Ctx(ctx).Str("procedure", procedure).Str("loan_id", loanID).Str("code", appErr.Code).Msg("loan_procedure_rejected")
			return nil, classified
		default:
			obs.CountProcedureCall(procedure, "error")
			s.logger.Error().Ctx(ctx).Err(err).Str("procedure", procedure).Str("loan_id", loanID).Msg("loan_procedure_failed")
			return nil, classified
		}
	}
	obs.CountProcedureCall(procedure, "ok")
	if len(out) == 0 {
		out = []byte("null")
	}
	return json.RawMessage(out), nil
}
