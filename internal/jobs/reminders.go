// Package jobs runs scheduled background work for the worker process.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/lock"
	"github.com/noah-isme/backend-jewelry/internal/notify"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/pricing"
	"github.com/noah-isme/backend-jewelry/internal/scheme"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

// LockKey serialises reminder runs across worker replicas.
const LockKey = "jewelry:jobs:maturity-reminders"

type tenantLister interface {
	ListTenantIDs(ctx context.Context) ([]pgtype.UUID, error)
}

type enrollmentReader interface {
	Maturing(ctx context.Context, from, to time.Time) ([]db.ListMaturingEnrollmentsRow, error)
}

type shopReader interface {
	Shop(ctx context.Context) (db.ShopSetting, error)
}

type locker interface {
	TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// RunStats summarises one reminder run.
type RunStats struct {
	Tenants     int
	Enrollments int
	Enqueued    int
	Duplicates  int
	Failed      int
}

// Reminders finds enrollments about to mature and queues a reminder for each.
type Reminders struct {
	Tenants     tenantLister
	Enrollments enrollmentReader
	Settings    shopReader
	Queue       notify.Enqueuer
	Locker      locker
	LockTTL     time.Duration
	LeadDays    int
	Now         func() time.Time
	Logger      zerolog.Logger
}

// Tick is the scheduled entry point. Losing the lock to another replica is
// not an error.
func (r Reminders) Tick(ctx context.Context) error {
	log := obs.Component(r.Logger, "jobs")
	err := r.Locker.TryWithLock(ctx, LockKey, r.LockTTL, func(ctx context.Context) error {
		stats, err := r.Run(ctx)
		log.Info().
			Int("tenants", stats.Tenants).
			Int("enrollments", stats.Enrollments).
			Int("enqueued", stats.Enqueued).
			Int("duplicates", stats.Duplicates).
			Int("failed", stats.Failed).
			Msg("maturity_reminders_run")
		return err
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		log.Debug().Msg("maturity_reminders_skipped_lock_held")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("maturity_reminders_failed")
	}
	return err
}

// Run walks every tenant once. A failing tenant is logged and counted; the
// rest still run. The returned error joins the per-tenant failures.
func (r Reminders) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	ids, err := r.Tenants.ListTenantIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("list tenants: %w", err)
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	today := now().UTC().Truncate(24 * time.Hour)
	lead := r.LeadDays
	if lead <= 0 {
		lead = 7
	}
	until := today.AddDate(0, 0, lead)

	var errs []error
	for _, id := range ids {
		tid := db.UUIDString(id)
		if tid == "" {
			continue
		}
		stats.Tenants++
		if err := r.runTenant(tenant.With(ctx, tid), tid, today, until, &stats); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tid, err))
		}
	}
	return stats, errors.Join(errs...)
}

func (r Reminders) runTenant(ctx context.Context, tid string, today, until time.Time, stats *RunStats) error {
	log := obs.Component(r.Logger, "jobs").With().Str("tenant_id", tid).Logger()

	rate := decimal.Zero
	shop, err := r.Settings.Shop(ctx)
	switch {
	case err == nil:
		rate = pricing.NonNegative(db.NumericToDecimal(shop.GoldRate))
	case db.IsNotFound(err):
	default:
		return fmt.Errorf("load shop settings: %w", err)
	}

	rows, err := r.Enrollments.Maturing(ctx, today, until)
	if err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	items, _ := scheme.Forecast(scheme.EnrollmentsFromRows(rows), rate)

	var failed int
	for _, item := range items {
		stats.Enrollments++
		if notify.NormalizePhone(item.CustomerPhone) == "" {
			log.Debug().Str("enrollment_id", item.ID).Msg("reminder_skipped_no_phone")
			obs.CountReminder("no_phone")
			continue
		}
		payload := notify.MaturityReminderPayload{
			TenantID:       tid,
			EnrollmentID:   item.ID,
			CustomerName:   item.CustomerName,
			CustomerPhone:  item.CustomerPhone,
			SchemeName:     item.SchemeName,
			MaturityDate:   item.MaturityDate.Format(time.DateOnly),
			ExpectedPayout: item.ExpectedPayoutValue.StringFixed(2),
		}
		queued, err := notify.EnqueueMaturityReminder(ctx, r.Queue, payload, today)
		switch {
		case err != nil:
			failed++
			stats.Failed++
			obs.CountReminder("enqueue_failed")
			log.Warn().Err(err).Str("enrollment_id", item.ID).Msg("reminder_enqueue_failed")
		case queued:
			stats.Enqueued++
			obs.CountReminder("enqueued")
		default:
			stats.Duplicates++
			obs.CountReminder("already_queued")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d reminders not queued", failed)
	}
	return nil
}
