// Package metrics exposes Prometheus metrics for numbering and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/numbering"
	"logistix/internal/infrastructure/cache"
	"logistix/internal/infrastructure/storage/postgres"
)

var _ numbering.Observer = (*Metrics)(nil)

// Metrics owns a registry and every collector of the service.
type Metrics struct {
	registry *prometheus.Registry

	numbersGenerated   *prometheus.CounterVec
	numberingErrors    *prometheus.CounterVec
	generateDuration   *prometheus.HistogramVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// New creates a registry with process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		numbersGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "numbering_generated_total",
			Help: "Document numbers issued",
		}, []string{"kind"}),
		numberingErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "numbering_errors_total",
			Help: "Failed number generations by reason",
		}, []string{"kind", "reason"}),
		generateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numbering_generate_duration_seconds",
			Help:    "Latency of number generation including counter round-trips",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveGenerate implements numbering.Observer.
func (m *Metrics) ObserveGenerate(kind corenum.Kind, reason string, elapsed time.Duration) {
	m.generateDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	if reason != "" {
		m.numberingErrors.WithLabelValues(string(kind), reason).Inc()
		return
	}
	m.numbersGenerated.WithLabelValues(string(kind)).Inc()
}

// RecordHTTP records one finished request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// PoolStatser reports connection pool statistics; *postgres.Pool satisfies it.
type PoolStatser interface {
	Stats() postgres.PoolStats
}

// RegisterPool exports pool gauges.
func (m *Metrics) RegisterPool(pool PoolStatser) {
	gauge := func(name, help string, pick func(postgres.PoolStats) int32) {
		promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(pick(pool.Stats()))
		})
	}
	gauge("db_pool_total_conns", "Open connections", func(s postgres.PoolStats) int32 { return s.TotalConns })
	gauge("db_pool_acquired_conns", "Connections in use", func(s postgres.PoolStats) int32 { return s.AcquiredConns })
	gauge("db_pool_idle_conns", "Idle connections", func(s postgres.PoolStats) int32 { return s.IdleConns })
	gauge("db_pool_max_conns", "Configured connection limit", func(s postgres.PoolStats) int32 { return s.MaxConns })
}

// RegisterTemplateCache exports template cache counters.
func (m *Metrics) RegisterTemplateCache(c *cache.TemplateCache) {
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "numbering_template_cache_entries",
		Help: "Templates (and cached absences) held in memory",
	}, func() float64 { return float64(c.Stats().Entries) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "numbering_template_cache_hits_total",
		Help: "Template lookups served from memory",
	}, func() float64 { return float64(c.Stats().Hits) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "numbering_template_cache_misses_total",
		Help: "Template lookups that reached the database",
	}, func() float64 { return float64(c.Stats().Misses) })
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
