// Package observability provides metrics and monitoring capabilities for
// the AgriSight-Go application.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlaakso/agrisight-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Analysis *metrics.AnalysisMetrics
	Imagery  *metrics.ImageryMetrics
	Weather  *metrics.WeatherMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any collector fails to register.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	analysisMetrics, err := metrics.NewAnalysisMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis metrics: %w", err)
	}

	imageryMetrics, err := metrics.NewImageryMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create imagery metrics: %w", err)
	}

	weatherMetrics, err := metrics.NewWeatherMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Analysis: analysisMetrics,
		Imagery:  imageryMetrics,
		Weather:  weatherMetrics,
	}, nil
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
