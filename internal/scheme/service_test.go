package scheme

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-jewelry/internal/cache"
	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/repo"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

type enrollmentStub struct {
	rows     []db.ListMaturingEnrollmentsRow
	err      error
	calls    int
	from, to time.Time
}

func (s *enrollmentStub) Maturing(_ context.Context, from, to time.Time) ([]db.ListMaturingEnrollmentsRow, error) {
	s.calls++
	s.from, s.to = from, to
	return s.rows, s.err
}

type shopStub struct {
	shop db.ShopSetting
	err  error
}

func (s shopStub) Shop(context.Context) (db.ShopSetting, error) { return s.shop, s.err }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func row(day string, calc CalculationType, paid, weight string) db.ListMaturingEnrollmentsRow {
	t, _ := time.Parse(time.DateOnly, day)
	return db.ListMaturingEnrollmentsRow{
		ID:                pgtype.UUID{Bytes: uuid.New(), Valid: true},
		MaturityDate:      db.Date(t),
		TotalPaid:         db.DecimalToNumeric(dec(paid)),
		AccumulatedWeight: db.DecimalToNumeric(dec(weight)),
		Status:            "ACTIVE",
		CalculationType:   string(calc),
		CustomerName:      pgtype.Text{String: "Meera", Valid: true},
		SchemeName:        "Swarna 11",
	}
}

func fixedNow() time.Time { return time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC) }

func newForecastService(t *testing.T, enrollments *enrollmentStub, shop shopStub) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(ServiceConfig{
		Enrollments:   enrollments,
		Settings:      shop,
		Cache:         cache.New(client, time.Minute),
		DefaultMonths: 3,
		Now:           fixedNow,
		Logger:        zerolog.Nop(),
	}), mr
}

func TestServiceForecastUsesShopRateAndWindow(t *testing.T) {
	enrollments := &enrollmentStub{rows: []db.ListMaturingEnrollmentsRow{
		row("2025-04-02", WeightAccumulation, "50000", "8.5"),
		row("2025-04-20", FlatAmount, "60000", "0"),
		row("2025-05-01", FixedDuration, "22000", "0"),
	}}
	svc, _ := newForecastService(t, enrollments, shopStub{shop: db.ShopSetting{GoldRate: db.DecimalToNumeric(dec("6000"))}})
	ctx := tenant.With(context.Background(), uuid.NewString())

	rep, err := svc.Forecast(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, 3, rep.Months)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), enrollments.from)
	require.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), enrollments.to)
	require.Equal(t, "6000", rep.EstimatedRate.String())
	require.Equal(t, 3, rep.Summary.TotalCount)
	require.Equal(t, "8.5", rep.Summary.TotalGoldWeight.String())
	require.Equal(t, "82000", rep.Summary.TotalCashLiability.String())

	april, ok := rep.Summary.MonthlyBreakdown.Get("Apr 2025")
	require.True(t, ok)
	require.Equal(t, "111000", april.String())
	require.Equal(t, "Apr 2025", rep.Summary.MonthlyBreakdown[0].Label)
	require.Equal(t, "May 2025", rep.Summary.MonthlyBreakdown[1].Label)
}

func TestServiceForecastIsCachedPerTenant(t *testing.T) {
	enrollments := &enrollmentStub{rows: []db.ListMaturingEnrollmentsRow{row("2025-04-02", FlatAmount, "1000", "0")}}
	svc, mr := newForecastService(t, enrollments, shopStub{})
	shopA := tenant.With(context.Background(), uuid.NewString())
	shopB := tenant.With(context.Background(), uuid.NewString())

	first, err := svc.Forecast(shopA, Query{Months: 2, Rate: dec("6100")})
	require.NoError(t, err)
	second, err := svc.Forecast(shopA, Query{Months: 2, Rate: dec("6100")})
	require.NoError(t, err)
	require.Equal(t, 1, enrollments.calls)
	require.Equal(t, first.Summary.TotalCashLiability.String(), second.Summary.TotalCashLiability.String())
	require.Equal(t, first.Summary.MonthlyBreakdown[0].Label, second.Summary.MonthlyBreakdown[0].Label)

	_, err = svc.Forecast(shopB, Query{Months: 2, Rate: dec("6100")})
	require.NoError(t, err)
	require.Equal(t, 2, enrollments.calls)

	mr.FastForward(2 * time.Minute)
	_, err = svc.Forecast(shopA, Query{Months: 2, Rate: dec("6100")})
	require.NoError(t, err)
	require.Equal(t, 3, enrollments.calls)
}

func TestServiceForecastWithoutShopSettingsValuesWeightAtZero(t *testing.T) {
	enrollments := &enrollmentStub{rows: []db.ListMaturingEnrollmentsRow{row("2025-04-02", WeightAccumulation, "1000", "2")}}
	svc, _ := newForecastService(t, enrollments, shopStub{err: pgx.ErrNoRows})

	rep, err := svc.Forecast(tenant.With(context.Background(), uuid.NewString()), Query{Months: 1})
	require.NoError(t, err)
	require.True(t, rep.Forecast[0].ExpectedPayoutValue.IsZero())
	require.Equal(t, "2", rep.Summary.TotalGoldWeight.String())
}

func TestServiceForecastRepositoryError(t *testing.T) {
	svc, _ := newForecastService(t, &enrollmentStub{err: errors.New("boom")}, shopStub{})

	_, err := svc.Forecast(tenant.With(context.Background(), uuid.NewString()), Query{Rate: dec("1")})
	require.Error(t, err)
}

func TestMaturityForecastHandler(t *testing.T) {
	enrollments := &enrollmentStub{rows: []db.ListMaturingEnrollmentsRow{
		row("2025-05-02", FlatAmount, "100", "0"),
		row("2025-04-02", FlatAmount, "200", "0"),
	}}
	svc, _ := newForecastService(t, enrollments, shopStub{})
	h := &Handler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schemes/maturity-forecast?months=6&rate=6000", nil)
	req = req.WithContext(tenant.With(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	h.MaturityForecast(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Months  int `json:"months"`
			Summary struct {
				MonthlyBreakdown json.RawMessage `json:"monthlyBreakdown"`
			} `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 6, body.Data.Months)
	require.JSONEq(t, `{"May 2025":"100","Apr 2025":"200"}`, string(body.Data.Summary.MonthlyBreakdown))
	require.Regexp(t, `^\{"May 2025"`, string(body.Data.Summary.MonthlyBreakdown))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/schemes/maturity-forecast?months=0", nil)
	rec = httptest.NewRecorder()
	h.MaturityForecast(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastErrorsAreAppErrors(t *testing.T) {
	svc, _ := newForecastService(t, &enrollmentStub{}, shopStub{err: repo.ErrTenantMissing})

	_, err := svc.Forecast(context.Background(), Query{})
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "TENANT_REQUIRED", appErr.Code)
}
