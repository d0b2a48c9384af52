// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's Prometheus metrics. It satisfies
// leaderboard.Observer and middleware.HTTPRecorder.
type Manager struct {
	namespace         string
	subsystem         string
	histogramBuckets  []float64
	registry          *prometheus.Registry
	runtimeCollectors bool

	sessionsCreated *prometheus.CounterVec
	sessionsDeleted *prometheus.CounterVec
	scoreWrites     *prometheus.CounterVec
	recomputes      *prometheus.CounterVec
	queryLatency    *prometheus.HistogramVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager on its own registry unless one is
// supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoreboard",
		subsystem:        "store",
		histogramBuckets: prometheus.DefBuckets,
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.sessionsCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_created_total",
		Help:      "Sessions created, by suite",
	}, []string{"suite_id"})

	m.sessionsDeleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_deleted_total",
		Help:      "Sessions deleted, by suite",
	}, []string{"suite_id"})

	m.scoreWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_writes_total",
		Help:      "Single score writes, by operation (set, delete)",
	}, []string{"op"})

	m.recomputes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recomputes_total",
		Help:      "Total score recomputations, by outcome (ok, skipped, failed)",
	}, []string{"outcome"})

	m.queryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_duration_seconds",
		Help:      "Store transaction latency, by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route, method and status",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method", "status"})
}

func (m *Manager) SessionCreated(suiteID int64) {
	m.sessionsCreated.WithLabelValues(strconv.FormatInt(suiteID, 10)).Inc()
}

func (m *Manager) SessionDeleted(suiteID int64) {
	m.sessionsDeleted.WithLabelValues(strconv.FormatInt(suiteID, 10)).Inc()
}

func (m *Manager) ScoreWritten(op string) {
	m.scoreWrites.WithLabelValues(op).Inc()
}

func (m *Manager) Recomputed(outcome string) {
	m.recomputes.WithLabelValues(outcome).Inc()
}

func (m *Manager) QueryObserved(op string, d time.Duration) {
	m.queryLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (m *Manager) ObserveHTTP(route, method string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
