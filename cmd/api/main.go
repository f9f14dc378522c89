package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/app"
	"github.com/noah-isme/backend-jewelry/internal/auth"
	"github.com/noah-isme/backend-jewelry/internal/cache"
	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/config"
	"github.com/noah-isme/backend-jewelry/internal/health"
	"github.com/noah-isme/backend-jewelry/internal/invoice"
	"github.com/noah-isme/backend-jewelry/internal/loan"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/ratelimit"
	"github.com/noah-isme/backend-jewelry/internal/report"
	"github.com/noah-isme/backend-jewelry/internal/scheme"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := app.NewLogger(cfg, "jewelry-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.New(startCtx, cfg, "jewelry-api", logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close(context.Background())

	verifier, err := auth.NewVerifier(auth.Config{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		ClockSkew: cfg.JWTSkew,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}

	invoiceService := invoice.NewService(invoice.ServiceConfig{
		Settings:    deps.Settings,
		Invoices:    deps.Invoices,
		DefaultSGST: decimal.RequireFromString(cfg.DefaultSGSTPercent),
		DefaultCGST: decimal.RequireFromString(cfg.DefaultCGSTPercent),
		Logger:      logger,
	})
	schemeService := scheme.NewService(scheme.ServiceConfig{
		Enrollments:   deps.Enrollments,
		Settings:      deps.Settings,
		Cache:         cache.New(deps.Redis, cfg.ForecastCacheTTL),
		DefaultMonths: cfg.ForecastHorizonMonths,
		Logger:        logger,
	})
	loanService := loan.NewService(loan.ServiceConfig{
		Procedures: deps.Loans,
		Timeout:    cfg.OutboundTimeout,
		Logger:     logger,
	})

	reports := &report.Handler{
		Forecaster: schemeService,
		URLTTL:     cfg.ReportURLTTL,
		Logger:     logger,
	}
	if cfg.ReportsEnabled() {
		store, err := report.NewMinioStore(report.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("initialise report store")
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := store.EnsureBucket(bucketCtx); err != nil {
			logger.Error().Err(err).Str("bucket", cfg.MinioBucket).Msg("ensure report bucket")
		}
		cancel()
		reports.Store = store
	}

	calcLimiter, err := deps.NewLimiter(cfg.RateLimitCalculate)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), deps.Registry)
	}

	handler := routes{
		cfg:         cfg,
		logger:      logger,
		httpMetrics: httpMetrics,
		health: health.Handler{Probes: []health.Probe{
			health.PostgresProbe(deps.DB, cfg.HealthDBTimeout),
			health.RedisProbe(deps.Redis, cfg.HealthRedisTimeout),
		}},
		auth:    auth.Middleware{Verifier: verifier},
		tenants: tenant.NewResolver(cfg.TenantHeader, cfg.TenantRootDomain, cfg.DefaultTenant),
		idem:    common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL, Scope: tenantScope},
		calcLimit: ratelimit.Handler{
			Limiter: calcLimiter,
			Key:     ratelimit.TenantClientKey,
			Name:    "invoice_calculate",
			OnError: func(err error) { logger.Warn().Err(err).Msg("rate_limit_store_failed") },
		},
		invoices: invoice.NewHandler(invoice.HandlerConfig{Service: invoiceService, Validator: deps.Validator}),
		schemes:  &scheme.Handler{Service: schemeService},
		reports:  reports,
		loans:    &loan.Handler{Service: loanService, Validate: deps.Validator},
	}.handler()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
		health.SetReady(false)
		logger.Info().Msg("server draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
		logger.Info().Msg("server stopped")
	}
}
