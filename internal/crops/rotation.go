package crops

import "sort"

// RotationEntry is one leg of a sequential rotation plan.
type RotationEntry struct {
	Crop           string `json:"crop"`
	DurationMonths int    `json:"duration_months"`
	Category       string `json:"category"`
	Benefit        string `json:"benefit"`
}

// RotationPlan sequences the top crops to spread income and keep the
// soil working between cash cycles.
type RotationPlan struct {
	RotationType     string          `json:"rotation_type"`
	Sequence         []RotationEntry `json:"sequence"`
	TotalCycleMonths int             `json:"total_cycle_months"`
	Benefits         []string        `json:"benefits"`
	Note             string          `json:"note,omitempty"`
}

var rotationBenefits = map[string]string{
	"Legume":    "Fixes nitrogen in soil",
	"Grain":     "Builds organic matter",
	"Vegetable": "Quick cash crop",
	"Oilseed":   "Deep root system improves soil",
	"Herb":      "Pest control through diversity",
	"Fruit":     "Long-term investment",
}

func rotationBenefit(category string) string {
	if b, ok := rotationBenefits[category]; ok {
		return b
	}
	return "Diversifies production"
}

// Rotation cycle bounds in months. The plan fills greedily until it
// covers at least a year without exceeding a year and a half.
const (
	rotationMinMonths = 12
	rotationMaxMonths = 18
)

// buildRotationPlan fills a rotation cycle from the given
// recommendations, walking candidates by ascending growing period and
// preferring a category not yet in the sequence at every step. Crops
// may repeat once every candidate has been used. Fewer than two crops
// is not a rotation.
func buildRotationPlan(recs []Recommendation) RotationPlan {
	if len(recs) < 2 {
		return RotationPlan{Note: "Insufficient data for rotation plan"}
	}

	candidates := make([]Recommendation, len(recs))
	copy(candidates, recs)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].GrowingPeriodMonths < candidates[j].GrowingPeriodMonths
	})

	var sequence []RotationEntry
	total := 0
	seenCategory := make(map[string]bool)
	usedCrop := make(map[string]bool)

	for total < rotationMinMonths {
		pick := -1
		for i := range candidates {
			r := &candidates[i]
			if usedCrop[r.CropName] || r.GrowingPeriodMonths <= 0 ||
				total+r.GrowingPeriodMonths > rotationMaxMonths {
				continue
			}
			if pick == -1 {
				pick = i
			}
			if !seenCategory[r.Category] {
				pick = i
				break
			}
		}
		if pick == -1 {
			if len(usedCrop) == 0 {
				break
			}
			usedCrop = make(map[string]bool)
			continue
		}

		rec := &candidates[pick]
		sequence = append(sequence, RotationEntry{
			Crop:           rec.CropName,
			DurationMonths: rec.GrowingPeriodMonths,
			Category:       rec.Category,
			Benefit:        rotationBenefit(rec.Category),
		})
		total += rec.GrowingPeriodMonths
		seenCategory[rec.Category] = true
		usedCrop[rec.CropName] = true
	}

	if len(sequence) < 2 {
		return RotationPlan{Note: "Insufficient data for rotation plan"}
	}

	return RotationPlan{
		RotationType:     "Sequential high-profit rotation",
		Sequence:         sequence,
		TotalCycleMonths: total,
		Benefits: []string{
			"Maximizes annual profit",
			"Reduces pest and disease pressure",
			"Maintains soil fertility",
			"Diversifies income streams",
		},
	}
}
