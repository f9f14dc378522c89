package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-jewelry/internal/auth"
	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/config"
	"github.com/noah-isme/backend-jewelry/internal/health"
	"github.com/noah-isme/backend-jewelry/internal/invoice"
	"github.com/noah-isme/backend-jewelry/internal/loan"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/ratelimit"
	"github.com/noah-isme/backend-jewelry/internal/report"
	"github.com/noah-isme/backend-jewelry/internal/scheme"
	"github.com/noah-isme/backend-jewelry/internal/security"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

type routes struct {
	cfg         *config.Config
	logger      zerolog.Logger
	httpMetrics *obs.HTTPMetrics
	health      health.Handler
	auth        auth.Middleware
	tenants     *tenant.Resolver
	idem        common.Idem
	calcLimit   ratelimit.Handler
	invoices    *invoice.Handler
	schemes     *scheme.Handler
	reports     *report.Handler
	loans       *loan.Handler
}

func (rt routes) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if rt.cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if rt.httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: rt.httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: rt.logger}.Middleware)
	r.Use(security.Headers{EnableHSTS: rt.cfg.AppEnv == "production", HSTSMaxAge: 31536000}.Middleware)
	r.Use(cors.Handler(corsOptions(rt.cfg)))

	if rt.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if rt.cfg.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), rt.cfg.PprofUser, rt.cfg.PprofPass))
	}
	r.Get("/health/live", rt.health.Live)
	r.Get("/health/ready", rt.health.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: rt.cfg.BodyLimitBytes}.Middleware)
		v.Use(rt.tenants.Middleware)
		v.Use(rt.auth.RequireAuth)
		v.Use(tenant.Require)

		v.Route("/invoices", func(inv chi.Router) {
			inv.With(rt.calcLimit.Middleware, rt.idem.Middleware).Post("/calculate", rt.invoices.Calculate)
			inv.Get("/{id}/summary", rt.invoices.Summary)
		})
		v.Get("/gold/weight", rt.invoices.GoldWeight)

		v.Route("/schemes/maturity-forecast", func(s chi.Router) {
			s.Get("/", rt.schemes.MaturityForecast)
			s.Get("/export", rt.reports.ExportForecast)
		})

		v.Route("/loans/{id}", func(l chi.Router) {
			l.Use(rt.idem.Middleware)
			l.Post("/payments", rt.loans.AddPayment)
			l.Post("/close", rt.loans.Close)
		})
	})
	return r
}

// corsOptions allows any origin when none are configured, but only explicit
// origins may send credentials.
func corsOptions(cfg *config.Config) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", cfg.TenantHeader},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return opts
}

func tenantScope(r *http.Request) string {
	id, _ := tenant.From(r.Context())
	return id
}
