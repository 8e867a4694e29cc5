package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the HTTP surface and the ingestion cache.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	ingestDuration    prometheus.Histogram
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

// NewMetrics registers all collectors on a private registry so tests can
// build servers without double-registration panics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Histogram of file ingestion durations.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataset_cache_hits_total",
			Help: "Uploads answered from the content-addressed cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataset_cache_misses_total",
			Help: "Uploads that required a full ingestion run.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.ingestDuration,
		m.cacheHits,
		m.cacheMisses,
	)
	return m
}

// Handler exposes the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveIngest records one ingestion run.
func (m *Metrics) ObserveIngest(d time.Duration, cached bool) {
	if cached {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
	m.ingestDuration.Observe(d.Seconds())
}

// Instrument wraps a handler with request counting and timing for a route.
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
