package crops

import "strings"

// SoilProfile is the soil context inferred from a land-cover label. This is
// a deterministic external-data substitute, not a model: the label set is
// fixed and shared with the classifier.
type SoilProfile struct {
	PrimaryType string   `json:"primary_type"`
	Fertility   string   `json:"fertility"` // low, medium, high
	Drainage    string   `json:"drainage"`  // poor, variable, good, excellent
	SuitableFor []string `json:"suitable_for"`
}

// soilFamilies groups interchangeable soil types so a crop wanting "sandy
// loam" still matches land inferred as "loamy". Ordered: the first family
// containing a type wins, keeping inference deterministic.
var soilFamilies = []struct {
	name  string
	types []string
}{
	{"loamy", []string{"loamy", "fertile", "well-drained", "sandy loam", "clay loam"}},
	{"sandy", []string{"sandy", "sandy loam", "well-drained"}},
	{"clay", []string{"clay", "clay loam", "waterlogged"}},
	{"fertile", []string{"fertile", "loamy", "rich organic", "well-drained"}},
}

// InferSoil maps a land-cover label to a soil profile via a fixed lookup.
// Unrecognized labels, including the degraded-mode "Unknown", fall back to
// a neutral loamy profile.
func InferSoil(landCoverLabel string) SoilProfile {
	var p SoilProfile

	switch {
	case containsAny(landCoverLabel, "forest", "tree"):
		p = SoilProfile{PrimaryType: "loamy", Fertility: "high", Drainage: "good"}
	case containsAny(landCoverLabel, "arable", "crop", "cultivated"):
		p = SoilProfile{PrimaryType: "fertile", Fertility: "high", Drainage: "good"}
	case containsAny(landCoverLabel, "grass", "shrub", "pasture"):
		p = SoilProfile{PrimaryType: "sandy loam", Fertility: "medium", Drainage: "good"}
	case containsAny(landCoverLabel, "water", "flooded"):
		p = SoilProfile{PrimaryType: "clay", Fertility: "medium", Drainage: "poor"}
	case containsAny(landCoverLabel, "urban", "built"):
		p = SoilProfile{PrimaryType: "disturbed", Fertility: "low", Drainage: "variable"}
	case containsAny(landCoverLabel, "bare", "sparse"):
		p = SoilProfile{PrimaryType: "sandy", Fertility: "low", Drainage: "excellent"}
	default:
		p = SoilProfile{PrimaryType: "loamy", Fertility: "medium", Drainage: "good"}
	}

	p.SuitableFor = compatibleSoilTypes(p.PrimaryType)
	return p
}

// compatibleSoilTypes returns the family containing the primary type, or a
// minimal default set.
func compatibleSoilTypes(primaryType string) []string {
	for _, family := range soilFamilies {
		for _, t := range family.types {
			if t == primaryType {
				return family.types
			}
		}
	}
	return []string{primaryType, "loamy", "well-drained"}
}

func containsAny(label string, substrings ...string) bool {
	lower := strings.ToLower(label)
	for _, s := range substrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
