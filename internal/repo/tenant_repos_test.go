package repo_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/repo"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

type invoicesStub struct {
	getParams    db.GetInvoiceParams
	itemsParams  db.ListInvoiceItemsParams
	pointsParams db.GetCustomerPointsParams
	itemsCalled  int
}

func (s *invoicesStub) GetInvoice(ctx context.Context, arg db.GetInvoiceParams) (db.Invoice, error) {
	s.getParams = arg
	return db.Invoice{ID: arg.ID, InvoiceNumber: "INV-1"}, nil
}

func (s *invoicesStub) ListInvoiceItems(ctx context.Context, arg db.ListInvoiceItemsParams) ([]db.InvoiceItem, error) {
	s.itemsCalled++
	s.itemsParams = arg
	return []db.InvoiceItem{{InvoiceID: arg.InvoiceID}}, nil
}

func (s *invoicesStub) GetCustomerPoints(ctx context.Context, arg db.GetCustomerPointsParams) (int64, error) {
	s.pointsParams = arg
	return 420, nil
}

type schemesStub struct {
	params db.ListMaturingEnrollmentsParams
}

func (s *schemesStub) ListMaturingEnrollments(ctx context.Context, arg db.ListMaturingEnrollmentsParams) ([]db.ListMaturingEnrollmentsRow, error) {
	s.params = arg
	return nil, nil
}

type loansStub struct {
	payment db.AddLoanPaymentParams
	closed  db.CloseLoanParams
}

func (s *loansStub) AddLoanPayment(ctx context.Context, arg db.AddLoanPaymentParams) ([]byte, error) {
	s.payment = arg
	return []byte(`{"success":true}`), nil
}

func (s *loansStub) CloseLoan(ctx context.Context, arg db.CloseLoanParams) ([]byte, error) {
	s.closed = arg
	return []byte(`{"success":true}`), nil
}

func TestInvoicesTenantRepoRequiresTenant(t *testing.T) {
	tenantRepo := repo.InvoicesTenantRepo{Q: &invoicesStub{}}
	if _, err := tenantRepo.Items(context.Background(), uuid.NewString()); !errors.Is(err, repo.ErrTenantMissing) {
		t.Fatalf("expected ErrTenantMissing, got %v", err)
	}
	ctx := tenant.With(context.Background(), "not-a-uuid")
	if _, err := tenantRepo.Get(ctx, uuid.NewString()); !errors.Is(err, repo.ErrTenantInvalid) {
		t.Fatalf("expected ErrTenantInvalid, got %v", err)
	}
}

func TestInvoicesTenantRepoDelegates(t *testing.T) {
	stub := &invoicesStub{}
	tenantRepo := repo.InvoicesTenantRepo{Q: stub}
	tenantID := uuid.New()
	invoiceID := uuid.New()
	ctx := tenant.With(context.Background(), tenantID.String())

	items, err := tenantRepo.Items(ctx, invoiceID.String())
	if err != nil {
		t.Fatalf("items error: %v", err)
	}
	if stub.itemsCalled != 1 || len(items) != 1 {
		t.Fatalf("expected one delegated call, got %d calls and %d items", stub.itemsCalled, len(items))
	}
	if stub.itemsParams.TenantID.Bytes != tenantID || stub.itemsParams.InvoiceID.Bytes != invoiceID {
		t.Fatalf("unexpected params: %+v", stub.itemsParams)
	}

	points, err := tenantRepo.CustomerPoints(ctx, uuid.NewString())
	if err != nil || points != 420 {
		t.Fatalf("unexpected points result: %d %v", points, err)
	}
	if stub.pointsParams.TenantID.Bytes != tenantID {
		t.Fatalf("tenant mismatch in points lookup")
	}

	if _, err := tenantRepo.Get(ctx, "INV-1"); !errors.Is(err, repo.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestSchemesTenantRepoMaturingWindow(t *testing.T) {
	stub := &schemesStub{}
	tenantRepo := repo.SchemesTenantRepo{Q: stub}
	ctx := tenant.With(context.Background(), uuid.NewString())
	from := time.Date(2025, 1, 15, 17, 30, 0, 0, time.UTC)
	to := from.AddDate(0, 3, 0)

	if _, err := tenantRepo.Maturing(ctx, from, to); err != nil {
		t.Fatalf("maturing error: %v", err)
	}
	want := pgtype.Date{Time: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Valid: true}
	if stub.params.FromDate != want {
		t.Fatalf("expected from date %v, got %v", want, stub.params.FromDate)
	}
	if stub.params.ToDate.Time.Month() != time.April {
		t.Fatalf("expected April upper bound, got %v", stub.params.ToDate.Time)
	}
}

func TestLoansTenantRepoMapsPayment(t *testing.T) {
	stub := &loansStub{}
	tenantRepo := repo.LoansTenantRepo{Q: stub}
	ctx := tenant.With(context.Background(), uuid.NewString())
	loanID := uuid.New()

	if _, err := tenantRepo.AddPayment(ctx, loanID.String(), decimal.RequireFromString("2500.50"), "cash", "", "user-1"); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if stub.payment.LoanID.Bytes != loanID {
		t.Fatalf("loan id mismatch")
	}
	if got := db.NumericToDecimal(stub.payment.Amount); !got.Equal(decimal.RequireFromString("2500.50")) {
		t.Fatalf("expected amount 2500.50, got %s", got)
	}
	if stub.payment.Notes.Valid {
		t.Fatalf("blank notes should be NULL")
	}
	if stub.payment.CreatedBy.String != "user-1" {
		t.Fatalf("expected actor to be recorded, got %+v", stub.payment.CreatedBy)
	}

	if _, err := tenantRepo.Close(ctx, loanID.String(), "user-1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if stub.closed.LoanID.Bytes != loanID {
		t.Fatalf("close loan id mismatch")
	}
}

func TestClassifyMapsRepositoryErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{repo.ErrTenantMissing, http.StatusBadRequest, "TENANT_REQUIRED"},
		{fmt.Errorf("%w: bad", repo.ErrTenantInvalid), http.StatusBadRequest, "TENANT_INVALID"},
		{fmt.Errorf("%w: \"x\"", repo.ErrInvalidID), http.StatusBadRequest, "INVALID_ID"},
	}
	for _, tc := range cases {
		var appErr *common.AppError
		if !errors.As(repo.Classify(tc.err), &appErr) {
			t.Fatalf("%v: expected AppError", tc.err)
		}
		if appErr.HTTPStatus != tc.status || appErr.Code != tc.code {
			t.Fatalf("%v: got %d %s", tc.err, appErr.HTTPStatus, appErr.Code)
		}
	}
	if repo.Classify(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
