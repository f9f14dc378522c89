package app

import (
	"context"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/backend-jewelry/internal/config"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/ratelimit"
	"github.com/noah-isme/backend-jewelry/internal/repo"
	"github.com/noah-isme/backend-jewelry/internal/resilience"
)

// Dependencies holds the connections and shared services both binaries use.
type Dependencies struct {
	Config    *config.Config
	Logger    zerolog.Logger
	DB        *pgxpool.Pool
	Queries   *db.Queries
	Redis     *redis.Client
	Validator *validator.Validate
	Registry  prometheus.Registerer

	Settings    repo.SettingsTenantRepo
	Invoices    repo.InvoicesTenantRepo
	Enrollments repo.SchemesTenantRepo
	Loans       repo.LoansTenantRepo

	shutdownTracer func(context.Context) error
}

// NewLogger builds the process logger tagged with service and environment.
func NewLogger(cfg *config.Config, service string) zerolog.Logger {
	return obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().
		Str("service", service).
		Str("env", cfg.AppEnv).
		Logger()
}

// New connects to postgres and redis, installs tracing and registers metrics.
// Callers must Close the result.
func New(ctx context.Context, cfg *config.Config, service string, logger zerolog.Logger) (*Dependencies, error) {
	d := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
		Registry:  prometheus.DefaultRegisterer,
	}

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   service,
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			d.shutdownTracer = shutdown
		}
	}

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, d.Registry)
		if err := resilience.Register(d.Registry); err != nil {
			logger.Error().Err(err).Msg("register resilience metrics")
		}
	}

	if cfg.AutoMigrate {
		if err := Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		logger.Info().Msg("migrations applied")
	}

	pool, err := newPool(ctx, cfg, service)
	if err != nil {
		d.Close(ctx)
		return nil, err
	}
	d.DB = pool
	d.Queries = db.New(pool)

	rdb, err := newRedis(ctx, cfg, logger)
	if err != nil {
		d.Close(ctx)
		return nil, err
	}
	d.Redis = rdb

	d.Settings = repo.SettingsTenantRepo{Q: d.Queries}
	d.Invoices = repo.InvoicesTenantRepo{Q: d.Queries}
	d.Enrollments = repo.SchemesTenantRepo{Q: d.Queries}
	d.Loans = repo.LoansTenantRepo{Q: d.Queries}
	return d, nil
}

// Migrate applies the embedded migration set.
func Migrate(databaseURL string) error {
	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := db.RunMigrations(m); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func newPool(ctx context.Context, cfg *config.Config, service string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = service
	if cfg.DBMaxConns > 0 {
		poolConfig.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns > 0 {
		poolConfig.MinConns = cfg.DBMinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func newRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(rdb); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewLimiter builds a redis-backed rate limiter for the formatted rate, e.g. "120-M".
func (d *Dependencies) NewLimiter(formatted string) (*limiter.Limiter, error) {
	store, err := ratelimit.NewRedisStore(d.Redis)
	if err != nil {
		return nil, err
	}
	return ratelimit.New(store, formatted)
}

// AsynqRedis returns the connection options asynq uses for the task broker.
func (d *Dependencies) AsynqRedis() (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(d.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse asynq redis uri: %w", err)
	}
	return opt, nil
}

// Close releases every resource New acquired.
func (d *Dependencies) Close(ctx context.Context) {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		d.DB.Close()
	}
	if d.shutdownTracer != nil {
		errs = append(errs, d.shutdownTracer(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		d.Logger.Error().Err(err).Msg("close dependencies")
	}
}
