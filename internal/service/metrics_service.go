package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface, the
// desk dispatch loop and the college cache.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	dispatchStarted  *prometheus.CounterVec
	dispatchRejected *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchInFlight prometheus.Gauge
	openDesks        prometheus.Gauge
	logins           *prometheus.CounterVec

	cacheLatency prometheus.Observer
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dispatchStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "desk_dispatch_started_total",
		Help: "Desk operations handed to a worker",
	}, []string{"operation"})

	dispatchRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "desk_dispatch_rejected_total",
		Help: "Desk operations rejected because another one was pending",
	}, []string{"operation"})

	dispatchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "desk_dispatch_duration_seconds",
		Help:    "Time between handing the session to a worker and parking it again",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	dispatchInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "desk_dispatch_in_flight",
		Help: "Desk operations currently running on workers",
	})

	openDesks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "desk_open_sessions",
		Help: "Desks currently logged in",
	})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "desk_logins_total",
		Help: "Desk login attempts",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dispatchStarted, dispatchRejected, dispatchDuration,
		dispatchInFlight, openDesks, logins, cacheLatency, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		dispatchStarted:  dispatchStarted,
		dispatchRejected: dispatchRejected,
		dispatchDuration: dispatchDuration,
		dispatchInFlight: dispatchInFlight,
		openDesks:        openDesks,
		logins:           logins,
		cacheLatency:     cacheLatency,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// DispatchStarted implements dispatch.Observer.
func (m *MetricsService) DispatchStarted(operation string) {
	if m == nil {
		return
	}
	m.dispatchStarted.WithLabelValues(operation).Inc()
	m.dispatchInFlight.Inc()
}

// DispatchRejected implements dispatch.Observer.
func (m *MetricsService) DispatchRejected(operation string) {
	if m == nil {
		return
	}
	m.dispatchRejected.WithLabelValues(operation).Inc()
}

// DispatchCompleted implements dispatch.Observer.
func (m *MetricsService) DispatchCompleted(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.dispatchInFlight.Dec()
	m.dispatchDuration.WithLabelValues(operation, outcomeLabel(err)).Observe(elapsed.Seconds())
}

// DeskOpened and DeskClosed track logged-in desks.
func (m *MetricsService) DeskOpened() {
	if m == nil {
		return
	}
	m.openDesks.Inc()
}

func (m *MetricsService) DeskClosed() {
	if m == nil {
		return
	}
	m.openDesks.Dec()
}

// RecordLogin counts a login attempt by result.
func (m *MetricsService) RecordLogin(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcomeLabel(err)).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrInternal.Code {
		return appErr.Code
	}
	return "error"
}
