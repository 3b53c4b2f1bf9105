// Package classifier invokes the external land-cover classification
// capability. The model itself is a black box behind an HTTP inference
// endpoint; this package owns the wire contract, the timeout and the
// circuit breaker guarding it.
package classifier

import (
	"context"

	"github.com/mlaakso/agrisight-go/internal/imagery"
)

// Land-cover labels the external model emits. The set is fixed and shared
// with the crop engine's soil inference table.
const (
	LabelArableLand = "Arable Land"
	LabelForest     = "Forest"
	LabelGrassland  = "Grassland"
	LabelUrbanArea  = "Urban Area"
	LabelWaterBody  = "Water Body"

	// LabelUnknown is reserved for degraded-mode verdicts, the model never
	// returns it.
	LabelUnknown = "Unknown"
)

// KnownLabels lists every label the model can emit, in canonical order.
var KnownLabels = []string{
	LabelArableLand,
	LabelForest,
	LabelGrassland,
	LabelUrbanArea,
	LabelWaterBody,
}

// Prediction is the classification outcome for one image.
type Prediction struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// Classifier turns a raw satellite image into a land-cover prediction.
type Classifier interface {
	Classify(ctx context.Context, img *imagery.Image) (*Prediction, error)
}
