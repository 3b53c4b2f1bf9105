package analysis

import (
	"sort"

	"github.com/mlaakso/agrisight-go/internal/errors"
)

// LabelStats describes one label's share of the successful samples.
type LabelStats struct {
	Count          int     `json:"count"`
	Percentage     float64 `json:"percentage"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// Verdict is the aggregated land-cover decision for a region.
type Verdict struct {
	DominantLabel     string                `json:"dominant_label"`
	Confidence        float64               `json:"confidence"`
	SampleCount       int                   `json:"sample_count"`
	SuccessfulSamples int                   `json:"successful_samples"`
	Distribution      map[string]LabelStats `json:"label_distribution"`
	Degraded          bool                  `json:"degraded"`
}

// Aggregate reduces per-sample results to a verdict. The dominant label
// is the one with the most successful samples; ties break on higher
// mean confidence, then lexicographically so the outcome never depends
// on sample order. Returns ErrNoSuccessfulSamples when every sample
// failed.
func Aggregate(results []SampleResult) (*Verdict, error) {
	type labelAcc struct {
		count         int
		confidenceSum float64
	}

	byLabel := make(map[string]*labelAcc)
	successes := 0
	for i := range results {
		r := &results[i]
		if !r.OK() {
			continue
		}
		successes++
		acc := byLabel[r.Prediction.Label]
		if acc == nil {
			acc = &labelAcc{}
			byLabel[r.Prediction.Label] = acc
		}
		acc.count++
		acc.confidenceSum += r.Prediction.Confidence
	}

	if successes == 0 {
		return nil, errors.New(errors.ErrNoSuccessfulSamples).
			Component("analysis").
			Category(errors.CategoryAggregation).
			Context("sample_count", len(results)).
			Build()
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := byLabel[labels[i]], byLabel[labels[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		meanA := a.confidenceSum / float64(a.count)
		meanB := b.confidenceSum / float64(b.count)
		if meanA != meanB {
			return meanA > meanB
		}
		return labels[i] < labels[j]
	})

	distribution := make(map[string]LabelStats, len(byLabel))
	for label, acc := range byLabel {
		distribution[label] = LabelStats{
			Count:          acc.count,
			Percentage:     float64(acc.count) / float64(successes) * 100,
			MeanConfidence: acc.confidenceSum / float64(acc.count),
		}
	}

	dominant := labels[0]
	return &Verdict{
		DominantLabel:     dominant,
		Confidence:        distribution[dominant].MeanConfidence,
		SampleCount:       len(results),
		SuccessfulSamples: successes,
		Distribution:      distribution,
	}, nil
}
