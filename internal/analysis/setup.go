package analysis

import (
	"github.com/mlaakso/agrisight-go/internal/classifier"
	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/crops"
	"github.com/mlaakso/agrisight-go/internal/imagery"
	"github.com/mlaakso/agrisight-go/internal/observability"
	"github.com/mlaakso/agrisight-go/internal/weather"
)

// System bundles the pipeline with the shared services the commands
// need around it.
type System struct {
	Pipeline      *Pipeline
	Metrics       *observability.Metrics
	KnowledgeBase *crops.KnowledgeBase
	CropEngine    *crops.Engine
	Classifier    *classifier.HTTPClassifier
}

// NewSystem builds the full pipeline stack from configuration.
func NewSystem(settings *conf.Settings) (*System, error) {
	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	imagerySvc, err := imagery.NewService(settings, metrics.Imagery)
	if err != nil {
		return nil, err
	}

	weatherSvc, err := weather.NewService(settings, metrics.Weather)
	if err != nil {
		return nil, err
	}

	kb, err := crops.LoadKnowledgeBase()
	if err != nil {
		return nil, err
	}
	engine := crops.NewEngine(kb, settings.Crops)

	model := classifier.NewHTTPClassifier(settings.Classifier)
	orchestrator := NewOrchestrator(settings, imagerySvc, model, metrics.Analysis)

	return &System{
		Pipeline:      NewPipeline(orchestrator, weatherSvc, engine, metrics.Analysis),
		Metrics:       metrics,
		KnowledgeBase: kb,
		CropEngine:    engine,
		Classifier:    model,
	}, nil
}
