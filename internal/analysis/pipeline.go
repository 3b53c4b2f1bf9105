package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mlaakso/agrisight-go/internal/crops"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/logging"
	"github.com/mlaakso/agrisight-go/internal/observability/metrics"
	"github.com/mlaakso/agrisight-go/internal/sampling"
	"github.com/mlaakso/agrisight-go/internal/weather"
)

// Request is one analysis job: a region plus the farm parameters the
// crop engine needs.
type Request struct {
	Mode          sampling.Mode  `json:"mode"`
	Point         geo.Coordinate `json:"point"`
	Polygon       geo.Polygon    `json:"polygon,omitempty"`
	FarmSizeHa    float64        `json:"farm_size_hectares,omitempty"`
	RiskTolerance string         `json:"risk_tolerance,omitempty"`
}

// Result is the full pipeline output for one request.
type Result struct {
	RequestID      string                     `json:"request_id"`
	Mode           sampling.Mode              `json:"mode"`
	Location       geo.Coordinate             `json:"location"`
	AreaHectares   float64                    `json:"area_hectares,omitempty"`
	ResolutionTier int                        `json:"resolution_tier_used"`
	Verdict        *Verdict                   `json:"verdict"`
	Climate        *weather.Climate           `json:"climate,omitempty"`
	Crops          *crops.RecommendationSet   `json:"crop_analysis,omitempty"`
	FallbackCrops  []crops.FallbackSuggestion `json:"fallback_suggestions,omitempty"`
	ElapsedMs      int64                      `json:"elapsed_ms"`
}

// Pipeline wires sampling, orchestration, aggregation, weather and the
// crop engine into one entry point.
type Pipeline struct {
	orchestrator *Orchestrator
	weather      *weather.Service
	crops        *crops.Engine
	metrics      *metrics.AnalysisMetrics
	logger       *slog.Logger
}

// NewPipeline assembles the pipeline from its already-built services.
func NewPipeline(orchestrator *Orchestrator, weatherSvc *weather.Service, cropEngine *crops.Engine, analysisMetrics *metrics.AnalysisMetrics) *Pipeline {
	return &Pipeline{
		orchestrator: orchestrator,
		weather:      weatherSvc,
		crops:        cropEngine,
		metrics:      analysisMetrics,
		logger:       logging.ForService("analysis"),
	}
}

// Analyze runs the full pipeline. Classification failures degrade the
// result instead of failing it; only invalid input returns an error.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	requestID := uuid.NewString()

	plan, err := sampling.New(sampling.Region{
		Mode:    req.Mode,
		Point:   req.Point,
		Polygon: req.Polygon,
	})
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordRequest(string(req.Mode), "error", time.Since(start))
		}
		return nil, err
	}

	location := req.Point
	if req.Mode == sampling.ModePolygon {
		location = req.Polygon.Centroid()
	}

	p.logger.Info("analysis started",
		"request_id", requestID,
		"mode", req.Mode,
		"samples", len(plan.Samples),
		"zoom", plan.Zoom,
		"area_ha", plan.AreaHectares)

	result := &Result{
		RequestID:      requestID,
		Mode:           req.Mode,
		Location:       location,
		AreaHectares:   plan.AreaHectares,
		ResolutionTier: plan.Zoom,
	}

	samples, runErr := p.orchestrator.Run(ctx, plan)
	if runErr != nil && !errors.Is(runErr, errors.ErrTotalClassificationFailure) {
		if p.metrics != nil {
			p.metrics.RecordRequest(string(req.Mode), "error", time.Since(start))
		}
		return nil, runErr
	}

	verdict, aggErr := Aggregate(samples)
	if runErr != nil || aggErr != nil {
		return p.degrade(req, result, len(samples), start), nil
	}
	result.Verdict = verdict

	climate := p.weather.GetClimate(ctx, location)
	result.Climate = climate
	result.Crops = p.crops.Recommend(crops.Request{
		Latitude:       location.Lat,
		Longitude:      location.Lon,
		LandCoverLabel: verdict.DominantLabel,
		Climate:        climate,
		FarmSizeHa:     req.FarmSizeHa,
		RiskTolerance:  req.RiskTolerance,
	})
	result.ElapsedMs = time.Since(start).Milliseconds()

	if p.metrics != nil {
		p.metrics.RecordRequest(string(req.Mode), "success", time.Since(start))
		p.metrics.RecordVerdictConfidence(verdict.Confidence)
	}
	p.logger.Info("analysis complete",
		"request_id", requestID,
		"dominant_label", verdict.DominantLabel,
		"confidence", verdict.Confidence,
		"successful_samples", verdict.SuccessfulSamples,
		"elapsed_ms", result.ElapsedMs)

	return result, nil
}

// degrade fills the result with the unknown verdict and latitude-band
// crop suggestions.
func (p *Pipeline) degrade(req Request, result *Result, sampleCount int, start time.Time) *Result {
	result.Verdict = DegradedVerdict(sampleCount)
	result.FallbackCrops = p.crops.FallbackSuggestions(result.Location.Lat)
	result.ElapsedMs = time.Since(start).Milliseconds()

	if p.metrics != nil {
		p.metrics.RecordFallback()
		p.metrics.RecordRequest(string(req.Mode), "degraded", time.Since(start))
	}
	p.logger.Warn("analysis degraded, no successful samples",
		"request_id", result.RequestID,
		"samples", sampleCount)

	return result
}
