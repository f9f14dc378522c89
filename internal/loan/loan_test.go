package loan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/repo"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

type fixture struct {
	mock     pgxmock.PgxPoolIface
	router   http.Handler
	tenantID uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	svc := NewService(ServiceConfig{
		Procedures: repo.LoansTenantRepo{Q: db.New(mock)},
		Logger:     zerolog.Nop(),
	})
	h := &Handler{Service: svc, Validate: validator.New()}
	tenantID := uuid.New()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := tenant.With(req.Context(), tenantID.String())
			ctx = common.WithUserID(ctx, "staff-9")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/loans/{id}/payments", h.AddPayment)
	r.Post("/loans/{id}/close", h.Close)
	return fixture{mock: mock, router: r, tenantID: tenantID}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAddPaymentReturnsProcedureDocument(t *testing.T) {
	f := newFixture(t)
	loanID := uuid.New()
	f.mock.ExpectQuery(`SELECT add_loan_payment`).
		WithArgs(
			pgtype.UUID{Bytes: f.tenantID, Valid: true},
			pgtype.UUID{Bytes: loanID, Valid: true},
			pgxmock.AnyArg(),
			"UPI",
			pgtype.Text{String: "part payment", Valid: true},
			pgtype.Text{String: "staff-9", Valid: true},
		).
		WillReturnRows(pgxmock.NewRows([]string{"add_loan_payment"}).AddRow([]byte(`{"success":true,"outstanding":47500}`)))

	rec := f.do(http.MethodPost, "/loans/"+loanID.String()+"/payments", `{"amount":"2500.50","mode":"UPI","notes":"part payment"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.JSONEq(t, `{"data":{"success":true,"outstanding":47500}}`, rec.Body.String())
}

func TestAddPaymentValidation(t *testing.T) {
	f := newFixture(t)
	loanID := uuid.NewString()

	rec := f.do(http.MethodPost, "/loans/"+loanID+"/payments", `{"amount":100,"mode":"BARTER"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))

	rec = f.do(http.MethodPost, "/loans/"+loanID+"/payments", `{"amount":"-5","mode":"CASH"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "INVALID_AMOUNT", errorCode(t, rec))

	rec = f.do(http.MethodPost, "/loans/not-a-uuid/payments", `{"amount":10,"mode":"CASH"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_ID", errorCode(t, rec))
}

func TestCloseRejectedByProcedure(t *testing.T) {
	f := newFixture(t)
	loanID := uuid.New()
	f.mock.ExpectQuery(`SELECT close_loan`).
		WithArgs(pgtype.UUID{Bytes: f.tenantID, Valid: true}, pgtype.UUID{Bytes: loanID, Valid: true}, pgtype.Text{String: "staff-9", Valid: true}).
		WillReturnError(&pgconn.PgError{Code: "P0001", Message: "loan has outstanding balance"})

	rec := f.do(http.MethodPost, "/loans/"+loanID.String()+"/close", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "PROCEDURE_REJECTED", errorCode(t, rec))
}

func TestCloseUnknownLoan(t *testing.T) {
	f := newFixture(t)
	loanID := uuid.New()
	f.mock.ExpectQuery(`SELECT close_loan`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	rec := f.do(http.MethodPost, "/loans/"+loanID.String()+"/close", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "LOAN_NOT_FOUND", errorCode(t, rec))
}

func TestCloseUnexpectedFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`SELECT close_loan`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"})

	rec := f.do(http.MethodPost, "/loans/"+uuid.NewString()+"/close", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL", errorCode(t, rec))
}
