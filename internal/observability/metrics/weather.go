package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WeatherMetrics contains Prometheus metrics for climate data operations
type WeatherMetrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheHits     prometheus.Counter
}

// NewWeatherMetrics creates and registers new weather metrics
func NewWeatherMetrics(registry *prometheus.Registry) (*WeatherMetrics, error) {
	m := &WeatherMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WeatherMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetches_total",
			Help: "Total number of climate data fetch operations",
		},
		[]string{"provider", "status"},
	)

	m.fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_errors_total",
			Help: "Total number of climate fetch errors",
		},
		[]string{"provider"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Time taken to fetch climate data",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"provider"},
	)

	m.cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_cache_hits_total",
			Help: "Total number of climate cache hits",
		},
	)
}

// RecordFetch records the outcome of one climate fetch
func (m *WeatherMetrics) RecordFetch(provider string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.fetchErrors.WithLabelValues(provider).Inc()
	}
	m.fetchesTotal.WithLabelValues(provider, status).Inc()
	m.fetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCacheHit records a climate cache hit
func (m *WeatherMetrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// Describe implements the prometheus.Collector interface
func (m *WeatherMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchErrors.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.cacheHits.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *WeatherMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchErrors.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.cacheHits.Collect(ch)
}
