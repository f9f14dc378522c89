package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	AutoMigrate        bool

	DBMaxConns int32
	DBMinConns int32

	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	TracingSampling  float64
	PprofEnabled     bool
	PprofUser        string
	PprofPass        string

	HealthDBTimeout    time.Duration
	HealthRedisTimeout time.Duration
	ShutdownTimeout    time.Duration

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTSkew     time.Duration

	TenantHeader     string
	TenantRootDomain string
	DefaultTenant    string

	DefaultSGSTPercent string
	DefaultCGSTPercent string

	ForecastHorizonMonths int
	ForecastCacheTTL      time.Duration
	IdempotencyTTL        time.Duration
	RateLimitCalculate    string
	BodyLimitBytes        int64

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	ReportURLTTL   time.Duration

	WhatsAppBaseURL          string
	WhatsAppToken            string
	WhatsAppPhoneNumberID    string
	WhatsAppMaturityTemplate string
	WhatsAppLanguage         string

	ReminderCron      string
	ReminderLeadDays  int
	WorkerConcurrency int
	LockTTL           time.Duration

	RetryBase           time.Duration
	RetryMaxAttempts    int
	RetryJitterPercent  float64
	OutboundTimeout     time.Duration
	CircuitMinRequests  int
	CircuitFailureRatio float64
	CircuitOpenFor      time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		AutoMigrate:        parseBool(k.String("DB_AUTO_MIGRATE")),

		DBMaxConns: int32(parseInt(k.String("DB_MAX_CONNS"), 0)),
		DBMinConns: int32(parseInt(k.String("DB_MIN_CONNS"), 0)),

		LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:   parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "jewelry"),
		MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:   parseBoolDefault(k.String("OBS_ENABLE_TRACING"), true),
		TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampling:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		PprofEnabled:     parseBool(k.String("OBS_ENABLE_PPROF")),
		PprofUser:        strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
		PprofPass:        strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),

		HealthDBTimeout:    parseDuration(k.String("HEALTH_READY_DB_TIMEOUT"), "500ms"),
		HealthRedisTimeout: parseDuration(k.String("HEALTH_READY_REDIS_TIMEOUT"), "300ms"),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),

		JWTSecret:   k.String("JWT_SECRET"),
		JWTIssuer:   valueOrDefault(k.String("JWT_ISSUER"), "jewelry-auth"),
		JWTAudience: valueOrDefault(k.String("JWT_AUDIENCE"), "jewelry-web"),
		JWTSkew:     parseDuration(k.String("JWT_CLOCK_SKEW"), "30s"),

		TenantHeader:     valueOrDefault(k.String("TENANT_HEADER"), "X-Tenant-ID"),
		TenantRootDomain: strings.TrimSpace(k.String("TENANT_ROOT_DOMAIN")),
		DefaultTenant:    strings.TrimSpace(k.String("TENANT_DEFAULT")),

		DefaultSGSTPercent: parsePercent(k.String("GST_DEFAULT_SGST_PERCENT"), "1.5"),
		DefaultCGSTPercent: parsePercent(k.String("GST_DEFAULT_CGST_PERCENT"), "1.5"),

		ForecastHorizonMonths: parseInt(k.String("FORECAST_HORIZON_MONTHS"), 3),
		ForecastCacheTTL:      parseDuration(k.String("FORECAST_CACHE_TTL"), "5m"),
		IdempotencyTTL:        parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RateLimitCalculate:    valueOrDefault(k.String("RATE_LIMIT_CALCULATE"), "300-M"),
		BodyLimitBytes:        int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),

		MinioEndpoint:  strings.TrimSpace(k.String("MINIO_ENDPOINT")),
		MinioAccessKey: k.String("MINIO_ACCESS_KEY"),
		MinioSecretKey: k.String("MINIO_SECRET_KEY"),
		MinioUseSSL:    parseBool(k.String("MINIO_USE_SSL")),
		MinioBucket:    valueOrDefault(k.String("MINIO_BUCKET"), "reports"),
		ReportURLTTL:   parseDuration(k.String("REPORT_URL_TTL"), "15m"),

		WhatsAppBaseURL:          valueOrDefault(k.String("WHATSAPP_BASE_URL"), "https://graph.facebook.com/v19.0"),
		WhatsAppToken:            k.String("WHATSAPP_TOKEN"),
		WhatsAppPhoneNumberID:    k.String("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppMaturityTemplate: valueOrDefault(k.String("WHATSAPP_TEMPLATE_MATURITY"), "scheme_maturity_reminder"),
		WhatsAppLanguage:         valueOrDefault(k.String("WHATSAPP_TEMPLATE_LANGUAGE"), "en"),

		ReminderCron:      valueOrDefault(k.String("REMINDER_CRON"), "0 9 * * *"),
		ReminderLeadDays:  parseInt(k.String("REMINDER_LEAD_DAYS"), 7),
		WorkerConcurrency: parseInt(k.String("WORKER_CONCURRENCY"), 5),
		LockTTL:           parseDuration(k.String("LOCK_TTL"), "5m"),

		RetryBase:           parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:    parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent:  parseFloat(k.String("RETRY_JITTER_PERCENT"), 0.2),
		OutboundTimeout:     parseDuration(k.String("OUTBOUND_TIMEOUT"), "5s"),
		CircuitMinRequests:  parseInt(k.String("CIRCUIT_MIN_REQUESTS"), 10),
		CircuitFailureRatio: parseFloat(k.String("CIRCUIT_FAILURE_RATIO"), 0.5),
		CircuitOpenFor:      parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),
	}

	if cfg.ForecastHorizonMonths <= 0 {
		cfg.ForecastHorizonMonths = 3
	}
	if cfg.ReminderLeadDays <= 0 {
		cfg.ReminderLeadDays = 7
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// ReportsEnabled reports whether object storage has been configured for exports.
func (c *Config) ReportsEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

// MessagingEnabled reports whether the WhatsApp provider has credentials.
func (c *Config) MessagingEnabled() bool {
	return strings.TrimSpace(c.WhatsAppToken) != "" && strings.TrimSpace(c.WhatsAppPhoneNumberID) != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// parsePercent keeps GST percentages as strings so they can be handed to
// decimal arithmetic without a float round trip.
func parsePercent(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || parsed < 0 || parsed > 100 {
		return fallback
	}
	return trimmed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
