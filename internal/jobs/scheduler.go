package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-jewelry/internal/obs"
)

// Scheduler owns the worker's cron jobs.
type Scheduler struct {
	s      gocron.Scheduler
	logger zerolog.Logger
}

// NewScheduler registers the maturity reminder job on cronExpr. Times are UTC.
func NewScheduler(ctx context.Context, cronExpr string, reminders Reminders, logger zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	jobLogger := obs.Component(logger, "jobs")
	_, err = s.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(reminderTask(ctx, reminders, jobLogger)),
		gocron.WithName("maturity-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule maturity reminders %q: %w", cronExpr, err)
	}
	return &Scheduler{s: s, logger: jobLogger}, nil
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.s.Jobs())).Msg("scheduler_started")
	s.s.Start()
}

// Stop shuts the scheduler down and waits for running jobs to return.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("scheduler_stopping")
	return s.s.Shutdown()
}

func reminderTask(ctx context.Context, reminders Reminders, logger zerolog.Logger) func() {
	return func() {
		if err := reminders.Tick(ctx); err != nil {
			logger.Error().Err(err).Str("job", "maturity-reminders").Msg("job_failed")
		}
	}
}
