package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for the clinic workflow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	auditLogsTotal    *prometheus.CounterVec
	statusAppends     *prometheus.CounterVec
	missingStatus     prometheus.Counter
	httpRequestsTotal *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		auditLogsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mbs",
			Subsystem: "audit",
			Name:      "logs_written_total",
			Help:      "Audit log rows written",
		}, []string{"content_type", "operation"}),
		statusAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mbs",
			Subsystem: "status",
			Name:      "appended_total",
			Help:      "Status records appended to appointments and clinics",
		}, []string{"entity", "state"}),
		missingStatus: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mbs",
			Subsystem: "status",
			Name:      "missing_history_total",
			Help:      "Appointments presented with no status history (default CONFIRMED used)",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mbs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"method", "route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mbs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.auditLogsTotal, m.statusAppends, m.missingStatus, m.httpRequestsTotal, m.httpLatency)
	return m
}

func (m *Metrics) ObserveAuditLogs(contentType, operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.auditLogsTotal.WithLabelValues(contentType, operation).Add(float64(n))
}

func (m *Metrics) ObserveStatusAppend(entity, state string) {
	if m == nil {
		return
	}
	m.statusAppends.WithLabelValues(entity, state).Inc()
}

func (m *Metrics) ObserveMissingStatus() {
	if m == nil {
		return
	}
	m.missingStatus.Inc()
}

func (m *Metrics) ObserveHTTP(method, route, code string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}
