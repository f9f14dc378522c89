package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoiceCalculationsTotal counts invoice calculations by source (draft or stored).
	InvoiceCalculationsTotal *prometheus.CounterVec
	// MaturityForecastsTotal counts forecast requests by cache outcome.
	MaturityForecastsTotal *prometheus.CounterVec
	// ProcedureCallsTotal counts stored procedure invocations by outcome.
	ProcedureCallsTotal *prometheus.CounterVec
	// RemindersDispatchedTotal counts maturity reminder deliveries.
	RemindersDispatchedTotal *prometheus.CounterVec
	// ReportExportsTotal counts forecast report exports.
	ReportExportsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_calculations_total",
			Help:      "Count of invoice calculations by input source.",
		}, []string{"source"})
		MaturityForecastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maturity_forecasts_total",
			Help:      "Count of maturity forecasts by result.",
		}, []string{"result"})
		ProcedureCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "procedure_calls_total",
			Help:      "Count of stored procedure calls by procedure and result.",
		}, []string{"procedure", "result"})
		RemindersDispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_dispatched_total",
			Help:      "Count of maturity reminder deliveries by result.",
		}, []string{"result"})
		ReportExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_exports_total",
			Help:      "Count of forecast report exports by result.",
		}, []string{"result"})

		register(reg, &InvoiceCalculationsTotal)
		register(reg, &MaturityForecastsTotal)
		register(reg, &ProcedureCallsTotal)
		register(reg, &RemindersDispatchedTotal)
		register(reg, &ReportExportsTotal)
	})
}

// CountInvoiceCalculation increments InvoiceCalculationsTotal when registered.
func CountInvoiceCalculation(source string) {
	inc(InvoiceCalculationsTotal, source)
}

// CountForecast increments MaturityForecastsTotal when registered.
func CountForecast(result string) {
	inc(MaturityForecastsTotal, result)
}

// CountProcedureCall increments ProcedureCallsTotal when registered.
func CountProcedureCall(procedure, result string) {
	inc(ProcedureCallsTotal, procedure, result)
}

// CountReminder increments RemindersDispatchedTotal when registered.
func CountReminder(result string) {
	inc(RemindersDispatchedTotal, result)
}

// CountReportExport increments ReportExportsTotal when registered.
func CountReportExport(result string) {
	inc(ReportExportsTotal, result)
}

func inc(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}
