package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	entriesWritten    *prometheus.CounterVec
	validationFailure *prometheus.CounterVec
	reportDuration    *prometheus.HistogramVec
	integrityRuns     *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP and ledger metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_written_total",
		Help: "Journal entries committed by operation.",
	}, []string{"op"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_validation_failures_total",
		Help: "Journal entries rejected by validation kind.",
	}, []string{"kind"})
	reports := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_report_build_seconds",
		Help:    "Time spent deriving a report from a snapshot.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	integrity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_integrity_checks_total",
		Help: "Integrity job runs by result.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, written, rejected, reports, integrity)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		entriesWritten:    written,
		validationFailure: rejected,
		reportDuration:    reports,
		integrityRuns:     integrity,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// EntryWritten counts a committed create, update or delete.
func (m *Metrics) EntryWritten(op string) {
	if m == nil {
		return
	}
	m.entriesWritten.WithLabelValues(op).Inc()
}

// ValidationFailed counts a rejected journal entry.
func (m *Metrics) ValidationFailed(kind string) {
	if m == nil {
		return
	}
	m.validationFailure.WithLabelValues(kind).Inc()
}

// ReportBuilt observes how long a report took.
func (m *Metrics) ReportBuilt(report string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(report).Observe(elapsed.Seconds())
}

// IntegrityChecked counts an integrity job run.
func (m *Metrics) IntegrityChecked(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.integrityRuns.WithLabelValues(result).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
