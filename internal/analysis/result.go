// Package analysis runs the classification pipeline: sample a region,
// fetch and classify imagery concurrently, aggregate per-sample
// predictions into a land verdict and attach crop recommendations.
package analysis

import (
	"time"

	"github.com/mlaakso/agrisight-go/internal/classifier"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

// SampleResult is the outcome of classifying one sample point. Exactly
// one of Prediction and Err is set.
type SampleResult struct {
	Index      int
	Coordinate geo.Coordinate
	Prediction *classifier.Prediction
	Err        error
	Duration   time.Duration
}

// OK reports whether the sample produced a usable prediction.
func (r *SampleResult) OK() bool {
	return r.Err == nil && r.Prediction != nil
}
