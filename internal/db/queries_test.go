package db_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/db"
)

type QueriesTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	q        *db.Queries
	tenantID pgtype.UUID
	ctx      context.Context
}

func (s *QueriesTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(s.T(), err)
	s.mock = mock
	s.q = db.New(mock)
	s.tenantID = pgtype.UUID{Bytes: uuid.New(), Valid: true}
	s.ctx = context.Background()
}

func (s *QueriesTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestQueriesTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesTestSuite))
}

func num(v string) pgtype.Numeric {
	return db.DecimalToNumeric(decimal.RequireFromString(v))
}

func (s *QueriesTestSuite) TestListInvoiceItems() {
	invoiceID := pgtype.UUID{Bytes: uuid.New(), Valid: true}
	rows := pgxmock.NewRows([]string{"id", "invoice_id", "description", "net_weight", "rate", "making_rate", "stone_amount"}).
		AddRow(pgtype.UUID{Bytes: uuid.New(), Valid: true}, invoiceID, pgtype.Text{String: "22K bangle", Valid: true}, num("5.000"), num("5000"), num("100"), num("0")).
		AddRow(pgtype.UUID{Bytes: uuid.New(), Valid: true}, invoiceID, pgtype.Text{}, num("1.250"), pgtype.Numeric{}, num("80"), num("1500"))

	s.mock.ExpectQuery(`FROM invoice_items`).
		WithArgs(s.tenantID, invoiceID).
		WillReturnRows(rows)

	items, err := s.q.ListInvoiceItems(s.ctx, db.ListInvoiceItemsParams{TenantID: s.tenantID, InvoiceID: invoiceID})
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.True(db.NumericToDecimal(items[0].NetWeight).Equal(decimal.NewFromInt(5)))
	s.Equal("22K bangle", db.Text(items[0].Description))
	s.True(db.NumericToDecimal(items[1].Rate).IsZero())
	s.True(db.NumericToDecimal(items[1].StoneAmount).Equal(decimal.NewFromInt(1500)))
}

func (s *QueriesTestSuite) TestGetLoyaltySettingsMissing() {
	s.mock.ExpectQuery(`FROM loyalty_settings`).
		WithArgs(s.tenantID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.q.GetLoyaltySettings(s.ctx, s.tenantID)
	s.True(db.IsNotFound(err))
}

func (s *QueriesTestSuite) TestListMaturingEnrollments() {
	from := db.Date(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	to := db.Date(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	maturity := db.Date(time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC))
	rows := pgxmock.NewRows([]string{"id", "maturity_date", "total_paid", "accumulated_weight", "status", "calculation_type", "customer_name", "customer_phone", "scheme_name"}).
		AddRow(pgtype.UUID{Bytes: uuid.New(), Valid: true}, maturity, num("55000"), num("7.640"), "ACTIVE", "WEIGHT_ACCUMULATION",
			pgtype.Text{String: "Asha", Valid: true}, pgtype.Text{String: "+919800000000", Valid: true}, "Swarna 11")

	s.mock.ExpectQuery(`FROM scheme_enrollments`).
		WithArgs(s.tenantID, from, to).
		WillReturnRows(rows)

	got, err := s.q.ListMaturingEnrollments(s.ctx, db.ListMaturingEnrollmentsParams{TenantID: s.tenantID, FromDate: from, ToDate: to})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("WEIGHT_ACCUMULATION", got[0].CalculationType)
	s.Equal(time.February, db.DateToTime(got[0].MaturityDate).Month())
	s.True(db.NumericToDecimal(got[0].AccumulatedWeight).Equal(decimal.RequireFromString("7.64")))
}

func (s *QueriesTestSuite) TestAddLoanPaymentReturnsDocument() {
	loanID := pgtype.UUID{Bytes: uuid.New(), Valid: true}
	arg := db.AddLoanPaymentParams{
		TenantID:  s.tenantID,
		LoanID:    loanID,
		Amount:    num("1000"),
		Mode:      "upi",
		Notes:     pgtype.Text{},
		CreatedBy: pgtype.Text{String: "staff-1", Valid: true},
	}
	s.mock.ExpectQuery(`SELECT add_loan_payment`).
		WithArgs(arg.TenantID, arg.LoanID, arg.Amount, arg.Mode, arg.Notes, arg.CreatedBy).
		WillReturnRows(pgxmock.NewRows([]string{"add_loan_payment"}).AddRow([]byte(`{"success":true,"outstanding":4000}`)))

	doc, err := s.q.AddLoanPayment(s.ctx, arg)
	s.Require().NoError(err)
	s.JSONEq(`{"success":true,"outstanding":4000}`, string(doc))
}

func (s *QueriesTestSuite) TestCloseLoanRejected() {
	loanID := pgtype.UUID{Bytes: uuid.New(), Valid: true}
	s.mock.ExpectQuery(`SELECT close_loan`).
		WithArgs(s.tenantID, loanID, pgtype.Text{}).
		WillReturnError(&pgconn.PgError{Code: "P0001", Message: "loan has outstanding balance"})

	_, err := s.q.CloseLoan(s.ctx, db.CloseLoanParams{TenantID: s.tenantID, LoanID: loanID})
	classified := db.Classify(err)

	var appErr *common.AppError
	s.Require().True(errors.As(classified, &appErr))
	s.Equal(http.StatusUnprocessableEntity, appErr.HTTPStatus)
	s.Equal("PROCEDURE_REJECTED", appErr.Code)
	s.Equal("loan has outstanding balance", appErr.Message)
}

func TestClassify(t *testing.T) {
	var appErr *common.AppError

	err := db.Classify(pgx.ErrNoRows)
	if !errors.As(err, &appErr) || appErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 app error, got %v", err)
	}
	err = db.Classify(&pgconn.PgError{Code: "23505"})
	if !errors.As(err, &appErr) || appErr.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409 app error, got %v", err)
	}
	plain := errors.New("boom")
	if db.Classify(plain) != plain {
		t.Fatalf("unrecognised errors should pass through")
	}
	if db.Classify(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestNumericConversions(t *testing.T) {
	d := decimal.RequireFromString("1234.567")
	if got := db.NumericToDecimal(db.DecimalToNumeric(d)); !got.Equal(d) {
		t.Fatalf("expected %s, got %s", d, got)
	}
	if !db.NumericToDecimal(pgtype.Numeric{}).IsZero() {
		t.Fatalf("NULL numeric should be zero")
	}
	if !db.NumericToDecimal(pgtype.Numeric{NaN: true, Valid: true}).IsZero() {
		t.Fatalf("NaN numeric should be zero")
	}
}
