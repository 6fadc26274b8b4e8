package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
	"zoblogs/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveUpstream(operation string, failed bool, duration time.Duration)
	SetRegistryCoins(count int)
	IncTrades(direction string, outcome string)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	upstreamDuration *prometheus.HistogramVec
	registryCoins    prometheus.Gauge
	tradesTotal      *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveUpstream(operation string, failed bool, duration time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.upstreamDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func (m *MetricsProvider) SetRegistryCoins(count int) {
	m.registryCoins.Set(float64(count))
}

func (m *MetricsProvider) IncTrades(direction string, outcome string) {
	m.tradesTotal.WithLabelValues(direction, outcome).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zoblogs_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zoblogs_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zoblogs_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zoblogs_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		upstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zoblogs_upstream_duration_seconds",
			Help:    "Duration of calls to the coin protocol and content storage",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),

		registryCoins: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "zoblogs_registry_coins_total",
			Help: "Number of coins in the platform registry",
		}),

		tradesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zoblogs_trades_total",
			Help: "Trades submitted by direction and outcome",
		}, []string{"direction", "outcome"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) ObserveUpstream(_ string, _ bool, _ time.Duration) {}
func (n *noopMetrics) SetRegistryCoins(_ int)                            {}
func (n *noopMetrics) IncTrades(_ string, _ string)                      {}
