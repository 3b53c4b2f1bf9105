package analysis

import "github.com/mlaakso/agrisight-go/internal/classifier"

// DegradedVerdict is the verdict used when classification produced no
// usable samples. The label is the reserved Unknown and the degraded
// flag tells the caller that only fallback recommendations apply.
func DegradedVerdict(sampleCount int) *Verdict {
	return &Verdict{
		DominantLabel: classifier.LabelUnknown,
		Confidence:    0,
		SampleCount:   sampleCount,
		Distribution:  map[string]LabelStats{},
		Degraded:      true,
	}
}
