// Package metrics provides prometheus collectors for the analysis pipeline
// and its external collaborators.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Histogram bucket parameters shared by collaborator-facing collectors.
// External APIs answer in the 100ms..50s range.
const (
	BucketStart100ms = 0.1
	BucketFactor2    = 2.0
	BucketCount10    = 10
)

// ImageryMetrics contains Prometheus metrics for satellite imagery fetches
type ImageryMetrics struct {
	fetchesTotal   *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	cacheHitsTotal *prometheus.CounterVec
}

// NewImageryMetrics creates and registers new imagery metrics
func NewImageryMetrics(registry *prometheus.Registry) (*ImageryMetrics, error) {
	m := &ImageryMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ImageryMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagery_fetches_total",
			Help: "Total number of satellite image fetch operations",
		},
		[]string{"provider", "status"},
	)

	m.fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagery_fetch_errors_total",
			Help: "Total number of satellite image fetch errors",
		},
		[]string{"provider"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagery_fetch_duration_seconds",
			Help:    "Time taken to fetch a satellite image",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"provider"},
	)

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagery_cache_hits_total",
			Help: "Total number of tile cache hits",
		},
		[]string{"provider"},
	)
}

// RecordFetch records the outcome of one image fetch
func (m *ImageryMetrics) RecordFetch(provider string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.fetchErrors.WithLabelValues(provider).Inc()
	}
	m.fetchesTotal.WithLabelValues(provider, status).Inc()
	m.fetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCacheHit records a tile cache hit
func (m *ImageryMetrics) RecordCacheHit(provider string) {
	m.cacheHitsTotal.WithLabelValues(provider).Inc()
}

// Describe implements the prometheus.Collector interface
func (m *ImageryMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchErrors.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *ImageryMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchErrors.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
}
