package crops

import (
	"math"
	"slices"
	"strings"

	"github.com/mlaakso/agrisight-go/internal/weather"
)

// Suitability sub-score weights. Climate and soil carry equal weight, risk
// slightly less.
const (
	weightClimate = 0.35
	weightSoil    = 0.35
	weightRisk    = 0.30
)

// Climate sub-score weights: temperature and rainfall dominate, the
// categorical zone match is a smaller bonus.
const (
	climateTempWeight  = 0.4
	climateRainWeight  = 0.4
	climateZoneWeight  = 0.2
	tempDecayPerDegree = 1.0 / 20.0
	rainDecayPerMm     = 1.0 / 1000.0
)

// Soil sub-score weights.
const (
	soilTypeWeight       = 0.6
	soilPartialTypeScore = 0.3
	soilFertilityHigh    = 0.3
	soilFertilityMedium  = 0.2
	soilDrainageWeight   = 0.1
)

// Scores is the per-crop suitability breakdown.
type Scores struct {
	Climate     float64 `json:"climate_score"`
	Soil        float64 `json:"soil_score"`
	Risk        float64 `json:"risk_score"`
	Suitability float64 `json:"suitability_score"`
}

// Financials is the per-crop financial projection.
type Financials struct {
	GrossRevenuePerHa     float64 `json:"gross_revenue_per_ha"`
	NetProfitPerHa        float64 `json:"net_profit_per_ha"`
	ROIPercent            float64 `json:"roi_percent"`
	TotalInvestment       float64 `json:"total_investment"`
	TotalProfit           float64 `json:"total_profit"`
	AnnualProfitPotential float64 `json:"annual_profit_potential"`
	PaybackMonths         int     `json:"payback_months"`
}

// riskMatrix maps (farmer risk tolerance, crop risk level) to a score.
// High-risk crops are penalized harder for cautious farmers than safe
// crops are for aggressive ones.
var riskMatrix = map[string]map[string]float64{
	"low":    {"low": 1.0, "medium": 0.9, "high": 0.6},
	"medium": {"low": 0.9, "medium": 1.0, "high": 0.8},
	"high":   {"low": 0.7, "medium": 0.9, "high": 1.0},
}

// climateScore rates how well the climate matches the crop's tolerance
// ranges, with linear partial credit outside them.
func climateScore(p *Profile, climate *weather.Climate) float64 {
	var score float64

	temp := climate.AvgTemperatureC
	if temp >= p.TempMinC && temp <= p.TempMaxC {
		score += climateTempWeight
	} else {
		deviation := math.Min(math.Abs(temp-p.TempMinC), math.Abs(temp-p.TempMaxC))
		score += math.Max(0, climateTempWeight-deviation*tempDecayPerDegree)
	}

	rainfall := climate.AnnualRainfallMm
	if rainfall >= p.RainfallMinMm && rainfall <= p.RainfallMaxMm {
		score += climateRainWeight
	} else {
		var deviation float64
		if rainfall < p.RainfallMinMm {
			deviation = p.RainfallMinMm - rainfall
		} else {
			deviation = rainfall - p.RainfallMaxMm
		}
		score += math.Max(0, climateRainWeight-deviation*rainDecayPerMm)
	}

	if slices.Contains(p.ClimateZones, climate.ClimateZone) {
		score += climateZoneWeight
	}

	return math.Min(1.0, score)
}

// soilScore rates soil compatibility: type intersection, fertility tier
// and drainage.
func soilScore(p *Profile, soil SoilProfile) float64 {
	var score float64

	overlap := false
	for _, want := range p.SoilTypes {
		if slices.Contains(soil.SuitableFor, want) {
			overlap = true
			break
		}
	}
	switch {
	case overlap:
		score += soilTypeWeight
	case anyContains(soil.SuitableFor, "loam") && anyContains(p.SoilTypes, "loam"):
		// Partial credit for related loam types
		score += soilPartialTypeScore
	}

	switch soil.Fertility {
	case "high":
		score += soilFertilityHigh
	case "medium":
		score += soilFertilityMedium
	}

	if slices.Contains(p.SoilTypes, "well-drained") {
		if soil.Drainage == "good" || soil.Drainage == "excellent" {
			score += soilDrainageWeight
		}
	} else if slices.Contains(p.SoilTypes, "waterlogged") && soil.Drainage == "poor" {
		score += soilDrainageWeight
	}

	return math.Min(1.0, score)
}

// riskScore rates the crop's risk level against the farmer's tolerance.
func riskScore(p *Profile, riskTolerance string) float64 {
	row, ok := riskMatrix[riskTolerance]
	if !ok {
		return 0.7
	}
	score, ok := row[p.RiskLevel]
	if !ok {
		return 0.7
	}
	return score
}

// suitability combines the three sub-scores.
func suitability(s Scores) float64 {
	return s.Climate*weightClimate + s.Soil*weightSoil + s.Risk*weightRisk
}

// financials computes per-hectare and farm-level projections.
func financials(p *Profile, farmSizeHa float64) Financials {
	gross := p.YieldKgPerHa * p.PricePerKg
	net := gross - p.InvestmentPerHa
	roi := net / p.InvestmentPerHa * 100
	cycles := float64(p.HarvestCyclesPerYear())

	return Financials{
		GrossRevenuePerHa:     gross,
		NetProfitPerHa:        net,
		ROIPercent:            roi,
		TotalInvestment:       p.InvestmentPerHa * farmSizeHa,
		TotalProfit:           net * farmSizeHa,
		AnnualProfitPotential: net * cycles * farmSizeHa,
		PaybackMonths:         p.GrowingMonths,
	}
}

// rankingScore is the deliberate non-linear combination rewarding crops
// that are simultaneously well-suited and profitable. A crop with zero
// suitability ranks zero no matter how profitable it is.
func rankingScore(suitabilityScore float64, f Financials) float64 {
	return suitabilityScore * (f.ROIPercent / 100.0) * (f.NetProfitPerHa / 10000.0)
}

func anyContains(values []string, substr string) bool {
	for _, v := range values {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}
