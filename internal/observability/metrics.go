package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the sync server.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	syncEntities    *prometheus.CounterVec
	stockRejections prometheus.Counter
	pullDuration    prometheus.Histogram
}

// Sync outcome labels for botica_sync_entities_total.
const (
	OutcomeApplied   = "applied"
	OutcomeStale     = "stale"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
)

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "botica_http_requests_total",
		Help: "HTTP request count by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "botica_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	syncEntities := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "botica_sync_entities_total",
		Help: "Entities processed by the push synchronizer, by type and outcome.",
	}, []string{"entity_type", "outcome"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "botica_sync_stock_rejections_total",
		Help: "Movements rejected because stock would go negative.",
	})
	pullDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "botica_sync_pull_duration_seconds",
		Help:    "Duration of pull snapshot assembly.",
		Buckets: prometheus.DefBuckets,
	})
	registry.MustRegister(requests, duration, syncEntities, stockRejections, pullDuration)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		syncEntities:    syncEntities,
		stockRejections: stockRejections,
		pullDuration:    pullDuration,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
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

// ObserveSyncEntity counts one entity processed by the push synchronizer.
func (m *Metrics) ObserveSyncEntity(entityType, outcome string) {
	if m == nil {
		return
	}
	m.syncEntities.WithLabelValues(entityType, outcome).Inc()
}

// ObserveStockRejection counts a rejected stock decrement.
func (m *Metrics) ObserveStockRejection() {
	if m == nil {
		return
	}
	m.stockRejections.Inc()
}

// ObservePullDuration records how long a pull snapshot took to assemble.
func (m *Metrics) ObservePullDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.pullDuration.Observe(d.Seconds())
}

// Registerer exposes the registry for custom metric registration.
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
