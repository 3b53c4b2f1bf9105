package crops

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/logging"
	"github.com/mlaakso/agrisight-go/internal/weather"
)

// viabilityThreshold drops crops whose suitability is too low to be
// worth showing regardless of profit.
const viabilityThreshold = 0.3

// Request carries everything the engine needs to rank crops for a site.
type Request struct {
	Latitude       float64
	Longitude      float64
	LandCoverLabel string
	Climate        *weather.Climate
	FarmSizeHa     float64
	RiskTolerance  string
}

// Recommendation is one ranked crop with its scoring breakdown and
// financial projection.
type Recommendation struct {
	Rank                 int        `json:"rank"`
	CropName             string     `json:"crop_name"`
	Category             string     `json:"category"`
	SuitabilityPercent   float64    `json:"suitability_percentage"`
	Scores               Scores     `json:"scores"`
	Financials           Financials `json:"financials"`
	GrowingPeriodMonths  int        `json:"growing_period_months"`
	HarvestCyclesPerYear int        `json:"harvest_cycles_per_year"`
	WaterRequirement     string     `json:"water_requirement"`
	LaborIntensity       string     `json:"labor_intensity"`
	RiskLevel            string     `json:"risk_level"`
	KeyAdvantages        []string   `json:"key_advantages"`
	SuccessTips          []string   `json:"success_tips"`
}

// MarketInsights summarizes the portfolio built from the top crops.
type MarketInsights struct {
	PortfolioStrategy    string   `json:"portfolio_strategy"`
	TotalInvestment      float64  `json:"total_investment_required"`
	ExpectedAnnualProfit float64  `json:"expected_annual_profit"`
	PortfolioROIPercent  float64  `json:"portfolio_roi_percentage"`
	MarketTrends         []string `json:"market_trends"`
	RiskMitigation       []string `json:"risk_mitigation"`
}

// RecommendationSet is the full engine output for one site.
type RecommendationSet struct {
	Latitude         float64             `json:"latitude"`
	Longitude        float64             `json:"longitude"`
	FarmSizeHa       float64             `json:"farm_size_hectares"`
	ClimateZone      string              `json:"climate_zone"`
	SoilType         string              `json:"soil_type"`
	RiskTolerance    string              `json:"risk_tolerance"`
	Recommendations  []Recommendation    `json:"top_suggestions"`
	RotationPlan     RotationPlan        `json:"crop_rotation_plan"`
	SeasonalCalendar map[string][]string `json:"seasonal_calendar"`
	MarketInsights   MarketInsights      `json:"market_insights"`
}

// Engine ranks the knowledge base for a site. Stateless once built.
type Engine struct {
	kb          *KnowledgeBase
	topN        int
	defaultSize float64
	defaultRisk string
	logger      *slog.Logger
}

// NewEngine wires the engine to a loaded knowledge base. TopN bounds the
// size of every recommendation list; the configured defaults fill in
// requests that omit farm size or risk tolerance.
func NewEngine(kb *KnowledgeBase, settings conf.CropsSettings) *Engine {
	if settings.TopN <= 0 {
		settings.TopN = 10
	}
	if settings.DefaultFarmSizeHa <= 0 {
		settings.DefaultFarmSizeHa = 1.0
	}
	if settings.DefaultRiskTolerance == "" {
		settings.DefaultRiskTolerance = "medium"
	}
	return &Engine{
		kb:          kb,
		topN:        settings.TopN,
		defaultSize: settings.DefaultFarmSizeHa,
		defaultRisk: settings.DefaultRiskTolerance,
		logger:      logging.ForService("crops"),
	}
}

type scoredCrop struct {
	profile    *Profile
	scores     Scores
	financials Financials
	rankScore  float64
}

// Recommend scores every crop in the knowledge base against the site
// conditions and returns the ranked set with rotation and calendar
// garnish.
func (e *Engine) Recommend(req Request) *RecommendationSet {
	if req.FarmSizeHa <= 0 {
		req.FarmSizeHa = e.defaultSize
	}
	if req.RiskTolerance == "" {
		req.RiskTolerance = e.defaultRisk
	}
	climate := req.Climate
	if climate == nil {
		climate = weather.DeriveClimate(req.Latitude)
	}

	soil := InferSoil(req.LandCoverLabel)

	scored := make([]scoredCrop, 0, len(e.kb.Profiles))
	for i := range e.kb.Profiles {
		p := &e.kb.Profiles[i]

		s := Scores{
			Climate: climateScore(p, climate),
			Soil:    soilScore(p, soil),
			Risk:    riskScore(p, req.RiskTolerance),
		}
		s.Suitability = suitability(s)
		if s.Suitability <= viabilityThreshold {
			continue
		}

		f := financials(p, req.FarmSizeHa)
		scored = append(scored, scoredCrop{
			profile:    p,
			scores:     s,
			financials: f,
			rankScore:  rankingScore(s.Suitability, f),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].rankScore != scored[j].rankScore {
			return scored[i].rankScore > scored[j].rankScore
		}
		if scored[i].scores.Suitability != scored[j].scores.Suitability {
			return scored[i].scores.Suitability > scored[j].scores.Suitability
		}
		return scored[i].profile.Name < scored[j].profile.Name
	})

	if len(scored) > e.topN {
		scored = scored[:e.topN]
	}

	recs := make([]Recommendation, 0, len(scored))
	for i, sc := range scored {
		recs = append(recs, formatRecommendation(sc, i+1))
	}

	e.logger.Debug("crop recommendations generated",
		"lat", req.Latitude,
		"lon", req.Longitude,
		"land_cover", req.LandCoverLabel,
		"viable_crops", len(recs))

	return &RecommendationSet{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		FarmSizeHa:       req.FarmSizeHa,
		ClimateZone:      climate.ClimateZone,
		SoilType:         soil.PrimaryType,
		RiskTolerance:    req.RiskTolerance,
		Recommendations:  recs,
		RotationPlan:     buildRotationPlan(firstN(recs, 3)),
		SeasonalCalendar: buildSeasonalCalendar(profilesOf(scored)),
		MarketInsights:   buildMarketInsights(firstN(scored, 3)),
	}
}

func formatRecommendation(sc scoredCrop, rank int) Recommendation {
	p := sc.profile
	return Recommendation{
		Rank:                 rank,
		CropName:             p.Name,
		Category:             p.Category,
		SuitabilityPercent:   math.Round(sc.scores.Suitability*1000) / 10,
		Scores:               sc.scores,
		Financials:           sc.financials,
		GrowingPeriodMonths:  p.GrowingMonths,
		HarvestCyclesPerYear: p.HarvestCyclesPerYear(),
		WaterRequirement:     p.WaterRequirement,
		LaborIntensity:       p.LaborIntensity,
		RiskLevel:            p.RiskLevel,
		KeyAdvantages:        cropAdvantages(p, sc.scores, sc.financials),
		SuccessTips:          successTips(p),
	}
}

// cropAdvantages lists the strongest selling points, at most four.
func cropAdvantages(p *Profile, s Scores, f Financials) []string {
	var advantages []string

	if f.ROIPercent > 100 {
		advantages = append(advantages, fmt.Sprintf("Excellent ROI of %.0f%%", f.ROIPercent))
	}
	if p.GrowingMonths <= 4 {
		advantages = append(advantages, "Quick harvest, fast returns")
	}
	if p.RiskLevel == "low" {
		advantages = append(advantages, "Low risk, reliable income")
	}
	if p.WaterRequirement == "low" {
		advantages = append(advantages, "Water-efficient, lower costs")
	}
	if p.LaborIntensity == "low" {
		advantages = append(advantages, "Low labor requirements")
	}
	if s.Climate >= 0.8 {
		advantages = append(advantages, "Highly suitable for local climate")
	}
	if p.PricePerKg > 2 {
		advantages = append(advantages, "High market value")
	}

	if len(advantages) > 4 {
		advantages = advantages[:4]
	}
	return advantages
}

// successTips lists up to three practical growing notes.
func successTips(p *Profile) []string {
	var tips []string

	if p.WaterRequirement == "high" {
		tips = append(tips, "Ensure consistent irrigation system")
	}
	if p.LaborIntensity == "high" {
		tips = append(tips, "Plan for adequate labor during harvest")
	}
	if p.RiskLevel == "high" {
		tips = append(tips, "Consider crop insurance")
	}
	if slices.Contains(p.SoilTypes, "well-drained") {
		tips = append(tips, "Ensure proper drainage to prevent waterlogging")
	}
	tips = append(tips, fmt.Sprintf("Optimal temperature: %.0f-%.0f C", p.TempMinC, p.TempMaxC))

	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

func buildMarketInsights(scored []scoredCrop) MarketInsights {
	insights := MarketInsights{
		PortfolioStrategy: "Diversified high-profit approach",
		MarketTrends: []string{
			"Premium vegetables show strong demand",
			"Organic certification can increase prices by 20-30%",
			"Direct-to-consumer sales improve margins",
		},
		RiskMitigation: []string{
			"Diversify across multiple crops",
			"Stagger planting dates",
			"Build relationships with multiple buyers",
			"Consider value-added processing",
		},
	}

	if len(scored) == 0 {
		return insights
	}

	var totalInvestment, totalProfit, roiSum float64
	for _, sc := range scored {
		totalInvestment += sc.financials.TotalInvestment
		totalProfit += sc.financials.TotalProfit
		roiSum += sc.financials.ROIPercent
	}
	insights.TotalInvestment = totalInvestment
	insights.ExpectedAnnualProfit = totalProfit
	insights.PortfolioROIPercent = roiSum / float64(len(scored))
	return insights
}

// FallbackSuggestion is a basic latitude-band recommendation used when
// full analysis is unavailable.
type FallbackSuggestion struct {
	Rank     int    `json:"rank"`
	CropName string `json:"crop_name"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

// FallbackSuggestions picks well-known crops for the latitude band. It
// needs no imagery, weather or soil input.
func (e *Engine) FallbackSuggestions(lat float64) []FallbackSuggestion {
	var names []string
	switch {
	case math.Abs(lat) < 23.5:
		names = []string{"Rice", "Sugarcane", "Corn"}
	case math.Abs(lat) < 35:
		names = []string{"Corn", "Soybeans", "Cotton"}
	default:
		names = []string{"Wheat", "Sunflower", "Canola"}
	}

	suggestions := make([]FallbackSuggestion, 0, len(names))
	for _, name := range names {
		p := e.kb.ProfileByName(name)
		if p == nil {
			continue
		}
		suggestions = append(suggestions, FallbackSuggestion{
			Rank:     len(suggestions) + 1,
			CropName: p.Name,
			Category: p.Category,
			Note:     "Basic recommendation, detailed analysis unavailable",
		})
	}
	return suggestions
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func profilesOf(scored []scoredCrop) []*Profile {
	profiles := make([]*Profile, 0, len(scored))
	for _, sc := range scored {
		profiles = append(profiles, sc.profile)
	}
	return profiles
}
