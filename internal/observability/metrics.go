package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	stageChanges      *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	applications      *prometheus.CounterVec
	resumeLinks       *prometheus.CounterVec
	rateLimitDecision *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ats_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ats_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		stageChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ats_stage_changes_total",
			Help: "Candidate stage changes by target stage",
		}, []string{"stage"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ats_notifications_total",
			Help: "Candidate e-mail attempts by result",
		}, []string{"result"}),
		applications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ats_applications_total",
			Help: "Application submissions by result",
		}, []string{"result"}),
		resumeLinks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ats_resume_links_total",
			Help: "Signed résumé links by result",
		}, []string{"result"}),
		rateLimitDecision: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ats_intake_rate_limit_total",
			Help: "Intake rate limiter decisions",
		}, []string{"decision"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes one HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// RecordStageChange counts a persisted stage transition.
func (m *Metrics) RecordStageChange(stage string) {
	if m == nil {
		return
	}
	m.stageChanges.WithLabelValues(stage).Inc()
}

// RecordNotification counts an e-mail attempt; result is "sent" or "failed".
func (m *Metrics) RecordNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// RecordApplication counts an intake outcome.
func (m *Metrics) RecordApplication(result string) {
	if m == nil {
		return
	}
	m.applications.WithLabelValues(result).Inc()
}

// RecordResumeLink counts a résumé link request.
func (m *Metrics) RecordResumeLink(result string) {
	if m == nil {
		return
	}
	m.resumeLinks.WithLabelValues(result).Inc()
}

// RecordRateLimit counts limiter decisions: allowed, limited or bypassed.
func (m *Metrics) RecordRateLimit(decision string) {
	if m == nil {
		return
	}
	m.rateLimitDecision.WithLabelValues(decision).Inc()
}
