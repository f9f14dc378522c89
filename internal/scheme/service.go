package scheme

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/cache"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/pricing"
	"github.com/noah-isme/backend-jewelry/internal/repo"
)

// MaxHorizonMonths bounds how far ahead a forecast may look.
const MaxHorizonMonths = 36

type enrollmentReader interface {
	Maturing(ctx context.Context, from, to time.Time) ([]db.ListMaturingEnrollmentsRow, error)
}

type shopReader interface {
	Shop(ctx context.Context) (db.ShopSetting, error)
}

// Service loads maturing enrollments for the tenant in context and
// forecasts their payouts.
type Service struct {
	enrollments   enrollmentReader
	settings      shopReader
	cache         *cache.JSON
	defaultMonths int
	now           func() time.Time
	logger        zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Enrollments   enrollmentReader
	Settings      shopReader
	Cache         *cache.JSON
	DefaultMonths int
	Now           func() time.Time
	Logger        zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	months := cfg.DefaultMonths
	if months <= 0 {
		months = 3
	}
	return &Service{
		enrollments:   cfg.Enrollments,
		settings:      cfg.Settings,
		cache:         cfg.Cache,
		defaultMonths: months,
		now:           now,
		logger:        obs.Component(cfg.Logger, "scheme"),
	}
}

// Query selects a forecast window and valuation rate. Zero Months uses the
// configured default; a non-positive Rate uses the shop's gold rate.
type Query struct {
	Months int
	Rate   decimal.Decimal
}

// Report is a forecast together with the parameters it was computed for.
type Report struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Months        int             `json:"months"`
	EstimatedRate decimal.Decimal `json:"estimatedRate"`
	Result
}

// Forecast returns the maturity forecast for enrollments maturing between
// today and today plus the requested number of months.
func (s *Service) Forecast(ctx context.Context, q Query) (Report, error) {
	months := q.Months
	if months <= 0 {
		months = s.defaultMonths
	}
	months = min(months, MaxHorizonMonths)

	rate := q.Rate
	if !rate.IsPositive() {
		shop, err := s.settings.Shop(ctx)
		switch {
		case err == nil:
			rate = pricing.NonNegative(db.NumericToDecimal(shop.GoldRate))
		case db.IsNotFound(err):
			rate = decimal.Zero
		default:
			obs.CountForecast("error")
			return Report{}, repo.Classify(err)
		}
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	until := today.AddDate(0, months, 0)
	key := cache.Key(ctx, "scheme", "forecast", today.Format(time.DateOnly), months, rate.String())

	var cached Report
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn().Ctx(ctx).Err(err).Msg("forecast_cache_get_failed")
	} else if ok {
		obs.CountForecast("cache_hit")
		return cached, nil
	}

	rows, err := s.enrollments.Maturing(ctx, today, until)
	if err != nil {
		obs.CountForecast("error")
		return Report{}, repo.Classify(err)
	}
	items, summary := Forecast(EnrollmentsFromRows(rows), rate)
	report := Report{
		From:          today,
		To:            until,
		Months:        months,
		EstimatedRate: rate,
		Result:        Result{Forecast: items, Summary: summary},
	}
	if err := s.cache.Set(ctx, key, report); err != nil {
		s.logger.Warn().Ctx(ctx).Err(err).Msg("forecast_cache_set_failed")
	}
	obs.CountForecast("computed")
	s.logger.Debug().Ctx(ctx).Int("enrollments", summary.TotalCount).Int("months", months).Msg("maturity_forecast_computed")
	return report, nil
}

// EnrollmentsFromRows maps enrollment rows into forecaster input.
func EnrollmentsFromRows(rows []db.ListMaturingEnrollmentsRow) []Enrollment {
	out := make([]Enrollment, 0, len(rows))
	for _, row := range rows {
		out = append(out, Enrollment{
			ID:                db.UUIDString(row.ID),
			MaturityDate:      db.DateToTime(row.MaturityDate),
			TotalPaid:         db.NumericToDecimal(row.TotalPaid),
			AccumulatedWeight: db.NumericToDecimal(row.AccumulatedWeight),
			Status:            row.Status,
			CalculationType:   CalculationType(row.CalculationType),
			CustomerName:      db.Text(row.CustomerName),
			CustomerPhone:     db.Text(row.CustomerPhone),
			SchemeName:        row.SchemeName,
		})
	}
	return out
}
