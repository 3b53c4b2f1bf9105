// Package crops scores a fixed crop knowledge base against an aggregated
// land verdict and climate context, and turns the result into ranked,
// explainable recommendations with financial projections.
package crops

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mlaakso/agrisight-go/internal/errors"
)

//go:embed data/crops.yaml
var knowledgeBaseYAML []byte

// Profile is one crop's static reference data. Read-only at runtime.
type Profile struct {
	Name             string   `yaml:"name" json:"name"`
	Category         string   `yaml:"category" json:"category"`
	YieldKgPerHa     float64  `yaml:"yield_kg_per_ha" json:"yield_kg_per_ha"`
	PricePerKg       float64  `yaml:"price_per_kg" json:"price_per_kg"`
	InvestmentPerHa  float64  `yaml:"investment_per_ha" json:"investment_per_ha"`
	GrowingMonths    int      `yaml:"growing_months" json:"growing_months"`
	TempMinC         float64  `yaml:"temp_min_c" json:"temp_min_c"`
	TempMaxC         float64  `yaml:"temp_max_c" json:"temp_max_c"`
	RainfallMinMm    float64  `yaml:"rainfall_min_mm" json:"rainfall_min_mm"`
	RainfallMaxMm    float64  `yaml:"rainfall_max_mm" json:"rainfall_max_mm"`
	SoilTypes        []string `yaml:"soil_types" json:"soil_types"`
	ClimateZones     []string `yaml:"climate_zones" json:"climate_zones"`
	WaterRequirement string   `yaml:"water_requirement" json:"water_requirement"`
	LaborIntensity   string   `yaml:"labor_intensity" json:"labor_intensity"`
	RiskLevel        string   `yaml:"risk_level" json:"risk_level"`
}

// HarvestCyclesPerYear derives how many harvests fit in a year. Perennials
// and long-cycle crops get one.
func (p *Profile) HarvestCyclesPerYear() int {
	if p.GrowingMonths <= 0 {
		return 1
	}
	cycles := 12 / p.GrowingMonths
	if cycles < 1 {
		return 1
	}
	return cycles
}

// KnowledgeBase is the immutable crop reference data, loaded once at
// process start and passed by reference into the engine.
type KnowledgeBase struct {
	Profiles []Profile
}

// ProfileByName looks up a crop by its display name. Returns nil when
// the crop is not in the knowledge base.
func (kb *KnowledgeBase) ProfileByName(name string) *Profile {
	for i := range kb.Profiles {
		if kb.Profiles[i].Name == name {
			return &kb.Profiles[i]
		}
	}
	return nil
}

type knowledgeBaseFile struct {
	Crops []Profile `yaml:"crops"`
}

// LoadKnowledgeBase decodes the embedded crop database.
func LoadKnowledgeBase() (*KnowledgeBase, error) {
	var decoded knowledgeBaseFile
	if err := yaml.Unmarshal(knowledgeBaseYAML, &decoded); err != nil {
		return nil, errors.New(fmt.Errorf("error decoding crop knowledge base: %w", err)).
			Component("crops").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if len(decoded.Crops) == 0 {
		return nil, errors.Newf("crop knowledge base is empty").
			Component("crops").
			Category(errors.CategoryConfiguration).
			Build()
	}

	for i := range decoded.Crops {
		p := &decoded.Crops[i]
		if p.Name == "" || p.YieldKgPerHa <= 0 || p.InvestmentPerHa <= 0 {
			return nil, errors.Newf("invalid crop profile at index %d", i).
				Component("crops").
				Category(errors.CategoryValidation).
				Context("crop", p.Name).
				Build()
		}
	}

	return &KnowledgeBase{Profiles: decoded.Crops}, nil
}
