package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics contains Prometheus metrics for the classification
// pipeline: sample fan-out, aggregation outcomes and degraded-mode use.
type AnalysisMetrics struct {
	requestsTotal     *prometheus.CounterVec
	samplesTotal      *prometheus.CounterVec
	sampleDuration    prometheus.Histogram
	requestDuration   prometheus.Histogram
	inFlightSamples   prometheus.Gauge
	fallbacksTotal    prometheus.Counter
	dominantConfGauge prometheus.Gauge
}

// NewAnalysisMetrics creates and registers new analysis metrics
func NewAnalysisMetrics(registry *prometheus.Registry) (*AnalysisMetrics, error) {
	m := &AnalysisMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AnalysisMetrics) initMetrics() {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total number of analysis requests",
		},
		[]string{"mode", "status"}, // mode: point, polygon; status: success, degraded, error
	)

	m.samplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_samples_total",
			Help: "Total number of per-sample classifications",
		},
		[]string{"status"}, // success, failure
	)

	m.sampleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_sample_duration_seconds",
			Help:    "Time taken to fetch and classify one sample",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
	)

	m.requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_request_duration_seconds",
			Help:    "End to end time for one analysis request",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
	)

	m.inFlightSamples = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_in_flight_samples",
			Help: "Number of sample classifications currently in flight",
		},
	)

	m.fallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_fallback_verdicts_total",
			Help: "Total number of degraded-mode fallback verdicts produced",
		},
	)

	m.dominantConfGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_last_dominant_confidence",
			Help: "Mean confidence of the dominant label in the most recent verdict",
		},
	)
}

// RecordRequest records the outcome of one analysis request
func (m *AnalysisMetrics) RecordRequest(mode, status string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(mode, status).Inc()
	m.requestDuration.Observe(duration.Seconds())
}

// RecordSample records the outcome of one sample classification
func (m *AnalysisMetrics) RecordSample(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.samplesTotal.WithLabelValues(status).Inc()
	m.sampleDuration.Observe(duration.Seconds())
}

// SampleStarted increments the in-flight gauge
func (m *AnalysisMetrics) SampleStarted() {
	m.inFlightSamples.Inc()
}

// SampleFinished decrements the in-flight gauge
func (m *AnalysisMetrics) SampleFinished() {
	m.inFlightSamples.Dec()
}

// RecordFallback records a degraded-mode verdict
func (m *AnalysisMetrics) RecordFallback() {
	m.fallbacksTotal.Inc()
}

// RecordVerdictConfidence records the confidence of the latest verdict
func (m *AnalysisMetrics) RecordVerdictConfidence(confidence float64) {
	m.dominantConfGauge.Set(confidence)
}

// Describe implements the prometheus.Collector interface
func (m *AnalysisMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.samplesTotal.Describe(ch)
	m.sampleDuration.Describe(ch)
	m.requestDuration.Describe(ch)
	m.inFlightSamples.Describe(ch)
	m.fallbacksTotal.Describe(ch)
	m.dominantConfGauge.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *AnalysisMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.samplesTotal.Collect(ch)
	m.sampleDuration.Collect(ch)
	m.requestDuration.Collect(ch)
	m.inFlightSamples.Collect(ch)
	m.fallbacksTotal.Collect(ch)
	m.dominantConfGauge.Collect(ch)
}
