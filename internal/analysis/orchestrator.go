package analysis

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlaakso/agrisight-go/internal/classifier"
	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/imagery"
	"github.com/mlaakso/agrisight-go/internal/logging"
	"github.com/mlaakso/agrisight-go/internal/observability/metrics"
	"github.com/mlaakso/agrisight-go/internal/sampling"
)

// Orchestrator fans sample points out to the imagery and classifier
// services. The semaphore is process-wide: concurrent requests share
// one budget of in-flight classifications.
type Orchestrator struct {
	imagery   *imagery.Service
	model     classifier.Classifier
	metrics   *metrics.AnalysisMetrics
	timeout   time.Duration
	threshold float64
	sem       chan struct{}
	logger    *slog.Logger
}

// NewOrchestrator builds the fan-out layer from configuration.
func NewOrchestrator(settings *conf.Settings, imagerySvc *imagery.Service, model classifier.Classifier, analysisMetrics *metrics.AnalysisMetrics) *Orchestrator {
	maxConcurrency := settings.Analysis.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	timeout := settings.Analysis.SampleTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Orchestrator{
		imagery:   imagerySvc,
		model:     model,
		metrics:   analysisMetrics,
		timeout:   timeout,
		threshold: settings.Analysis.Threshold,
		sem:       make(chan struct{}, maxConcurrency),
		logger:    logging.ForService("analysis"),
	}
}

// Run classifies every sample in the plan concurrently. Individual
// sample failures are recorded in their slot, not propagated; the
// returned error is ErrTotalClassificationFailure only when no sample
// succeeded.
func (o *Orchestrator) Run(ctx context.Context, plan *sampling.Plan) ([]SampleResult, error) {
	results := make([]SampleResult, len(plan.Samples))

	var g errgroup.Group
	g.SetLimit(cap(o.sem))
	for i, coord := range plan.Samples {
		g.Go(func() error {
			results[i] = o.classifySample(ctx, i, coord, plan.Zoom)
			return nil
		})
	}
	g.Wait()

	successes := 0
	for i := range results {
		if results[i].OK() {
			successes++
		}
	}
	o.logger.Debug("sample fan-out complete",
		"samples", len(results),
		"successes", successes,
		"zoom", plan.Zoom)

	if successes == 0 && len(results) > 0 {
		return results, errors.New(errors.ErrTotalClassificationFailure).
			Component("analysis").
			Category(errors.CategoryClassification).
			Context("sample_count", len(results)).
			Build()
	}
	return results, nil
}

// classifySample runs one sample through fetch and classify under the
// shared concurrency budget and the per-sample timeout.
func (o *Orchestrator) classifySample(ctx context.Context, index int, coord geo.Coordinate, zoom int) SampleResult {
	result := SampleResult{Index: index, Coordinate: coord}

	select {
	case o.sem <- struct{}{}:
	case <-ctx.Done():
		result.Err = errors.New(ctx.Err()).
			Component("analysis").
			Category(errors.CategoryTimeout).
			Build()
		return result
	}
	defer func() { <-o.sem }()

	if o.metrics != nil {
		o.metrics.SampleStarted()
		defer o.metrics.SampleFinished()
	}

	sampleCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		if o.metrics != nil {
			o.metrics.RecordSample(result.OK(), result.Duration)
		}
	}()

	img, err := o.imagery.Fetch(sampleCtx, coord, zoom)
	if err != nil {
		result.Err = err
		return result
	}

	prediction, err := o.model.Classify(sampleCtx, img)
	if err != nil {
		result.Err = err
		return result
	}

	if prediction.Confidence < o.threshold {
		result.Err = errors.Newf("prediction confidence %.2f below threshold %.2f",
			prediction.Confidence, o.threshold).
			Component("analysis").
			Category(errors.CategoryClassification).
			Context("label", prediction.Label).
			Build()
		return result
	}

	result.Prediction = prediction
	return result
}
