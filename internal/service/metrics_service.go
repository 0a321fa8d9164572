package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inFlight        prometheus.Gauge
	sessionStreams  prometheus.Gauge
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	authzOutcomes   *prometheus.CounterVec
	authzPending    prometheus.Gauge
	registrations   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	uploads         *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served, excluding session streams",
		}),
		sessionStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "session_streams_open",
			Help: "Open session event streams",
		}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		authzOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization gate decisions by requirement and outcome",
		}, []string{"requirement", "outcome"}),
		authzPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "authz_pending_checks",
			Help: "Role lookups currently in flight",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_registrations_total",
			Help: "Registration submissions by result",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Confirmation emails by delivery result",
		}, []string{"result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Event image uploads by result",
		}, []string{"result"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.inFlight, m.sessionStreams, m.cacheLatency, m.cacheWrite,
		m.cacheHitRatio, m.cacheLookups, m.authzOutcomes, m.authzPending, m.registrations, m.notifications, m.uploads, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, label).Inc()
}

// RequestStarted adjusts the in-flight gauge; call with -1 when the request ends.
func (m *MetricsService) RequestStarted(delta float64) {
	if m == nil {
		return
	}
	m.inFlight.Add(delta)
}

// SessionStream adjusts the open session stream gauge.
func (m *MetricsService) SessionStream(delta float64) {
	if m == nil {
		return
	}
	m.sessionStreams.Add(delta)
}

// RecordCacheOperation records a lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordAuthzDecision counts a final gate outcome.
func (m *MetricsService) RecordAuthzDecision(requirement, outcome string) {
	if m == nil {
		return
	}
	m.authzOutcomes.WithLabelValues(requirement, outcome).Inc()
}

// AuthzPending moves the in-flight role lookup gauge by delta.
func (m *MetricsService) AuthzPending(delta float64) {
	if m == nil {
		return
	}
	m.authzPending.Add(delta)
}

// RecordRegistration counts a registration attempt by result code.
func (m *MetricsService) RecordRegistration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// RecordNotification counts a confirmation email delivery result.
func (m *MetricsService) RecordNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// RecordUpload counts an image upload result.
func (m *MetricsService) RecordUpload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}
