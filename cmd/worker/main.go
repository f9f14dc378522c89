package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-jewelry/internal/app"
	"github.com/noah-isme/backend-jewelry/internal/config"
	"github.com/noah-isme/backend-jewelry/internal/jobs"
	"github.com/noah-isme/backend-jewelry/internal/lock"
	"github.com/noah-isme/backend-jewelry/internal/notify"
	"github.com/noah-isme/backend-jewelry/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := app.NewLogger(cfg, "jewelry-worker").With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.New(startCtx, cfg, "jewelry-worker", logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close(context.Background())

	if !cfg.MessagingEnabled() {
		logger.Fatal().Msg("WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID are required by the worker")
	}

	redisOpt, err := deps.AsynqRedis()
	if err != nil {
		logger.Fatal().Err(err).Msg("asynq redis")
	}
	client := asynq.NewClient(redisOpt)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close asynq client")
		}
	}()

	whatsapp := notify.WhatsApp{
		HTTP: resilience.HTTPClient{
			Client: resilience.NewTracedClient(),
			Breaker: resilience.NewBreaker(resilience.BreakerConfig{
				Target:       "whatsapp",
				MinRequests:  cfg.CircuitMinRequests,
				FailureRatio: cfg.CircuitFailureRatio,
				OpenFor:      cfg.CircuitOpenFor,
				Logger:       logger,
			}),
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
			Timeout:     cfg.OutboundTimeout,
		},
		BaseURL:       cfg.WhatsAppBaseURL,
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
	}

	mux := asynq.NewServeMux()
	mux.Handle(notify.TypeMaturityReminder, notify.ReminderHandler{
		Messenger: whatsapp,
		Template:  cfg.WhatsAppMaturityTemplate,
		Language:  cfg.WhatsAppLanguage,
		Replay:    notify.RedisReplayGuard{Client: deps.Redis},
		Logger:    logger,
	})

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{notify.QueueReminders: 1},
		Logger:      asynqLogger{l: logger.With().Str("component", "asynq").Logger()},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warn().Err(err).Str("type", task.Type()).Int("retried", retried).Int("max_retry", maxRetry).Msg("task_failed")
		}),
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	if err := server.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start asynq server")
	}

	scheduler, err := jobs.NewScheduler(ctx, cfg.ReminderCron, jobs.Reminders{
		Tenants:     deps.Queries,
		Enrollments: deps.Enrollments,
		Settings:    deps.Settings,
		Queue:       client,
		Locker:      lock.Locker{R: deps.Redis},
		LockTTL:     cfg.LockTTL,
		LeadDays:    cfg.ReminderLeadDays,
		Logger:      logger,
	}, logger)
	if err != nil {
		server.Shutdown()
		logger.Fatal().Err(err).Msg("initialise scheduler")
	}
	scheduler.Start()

	logger.Info().Str("cron", cfg.ReminderCron).Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
	<-ctx.Done()

	logger.Info().Msg("worker stopping")
	if err := scheduler.Stop(); err != nil {
		logger.Error().Err(err).Msg("stop scheduler")
	}
	server.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
