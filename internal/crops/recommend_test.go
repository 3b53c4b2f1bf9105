package crops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/weather"
)

func loadTestKB(t *testing.T) *KnowledgeBase {
	t.Helper()
	kb, err := LoadKnowledgeBase()
	require.NoError(t, err)
	require.NotEmpty(t, kb.Profiles)
	return kb
}

func testEngine(t *testing.T, topN int) *Engine {
	t.Helper()
	return NewEngine(loadTestKB(t), conf.CropsSettings{TopN: topN})
}

func temperateClimate() *weather.Climate {
	return &weather.Climate{
		AvgTemperatureC:     18,
		AnnualRainfallMm:    700,
		ClimateZone:         weather.ZoneTemperate,
		Hemisphere:          "northern",
		GrowingSeasonMonths: 6,
	}
}

func TestRecommendRanksByProfitScore(t *testing.T) {
	engine := testEngine(t, 10)

	set := engine.Recommend(Request{
		Latitude:       48.2,
		Longitude:      16.4,
		LandCoverLabel: "Arable Land",
		Climate:        temperateClimate(),
		FarmSizeHa:     2.0,
		RiskTolerance:  "medium",
	})

	require.NotEmpty(t, set.Recommendations)
	assert.LessOrEqual(t, len(set.Recommendations), 10)
	assert.Equal(t, "fertile", set.SoilType)
	assert.Equal(t, weather.ZoneTemperate, set.ClimateZone)

	for i, rec := range set.Recommendations {
		assert.Equal(t, i+1, rec.Rank)
		assert.Greater(t, rec.Scores.Suitability, viabilityThreshold)
		assert.LessOrEqual(t, rec.Scores.Suitability, 1.0)
		if i > 0 {
			prev := set.Recommendations[i-1]
			prevScore := rankingScore(prev.Scores.Suitability, prev.Financials)
			curScore := rankingScore(rec.Scores.Suitability, rec.Financials)
			assert.GreaterOrEqual(t, prevScore, curScore)
		}
	}
}

func TestRecommendRespectsTopN(t *testing.T) {
	engine := testEngine(t, 3)

	set := engine.Recommend(Request{
		Latitude:       10.0,
		LandCoverLabel: "Arable Land",
		Climate: &weather.Climate{
			AvgTemperatureC:  26,
			AnnualRainfallMm: 1500,
			ClimateZone:      weather.ZoneTropical,
		},
		FarmSizeHa:    1.0,
		RiskTolerance: "high",
	})

	assert.LessOrEqual(t, len(set.Recommendations), 3)
}

func TestRecommendDefaultsFarmSizeAndRisk(t *testing.T) {
	engine := testEngine(t, 10)

	set := engine.Recommend(Request{
		Latitude:       48.2,
		LandCoverLabel: "Grassland",
		Climate:        temperateClimate(),
	})

	assert.Equal(t, 1.0, set.FarmSizeHa)
	assert.Equal(t, "medium", set.RiskTolerance)
}

func TestRecommendUsesConfiguredDefaults(t *testing.T) {
	engine := NewEngine(loadTestKB(t), conf.CropsSettings{
		TopN:                 10,
		DefaultFarmSizeHa:    2.5,
		DefaultRiskTolerance: "low",
	})

	set := engine.Recommend(Request{
		Latitude:       48.2,
		LandCoverLabel: "Grassland",
		Climate:        temperateClimate(),
	})

	assert.Equal(t, 2.5, set.FarmSizeHa)
	assert.Equal(t, "low", set.RiskTolerance)

	// Explicit request values still win over configured defaults.
	set = engine.Recommend(Request{
		Latitude:       48.2,
		LandCoverLabel: "Grassland",
		Climate:        temperateClimate(),
		FarmSizeHa:     4,
		RiskTolerance:  "high",
	})
	assert.Equal(t, 4.0, set.FarmSizeHa)
	assert.Equal(t, "high", set.RiskTolerance)
}

func TestRecommendDerivesClimateWhenMissing(t *testing.T) {
	engine := testEngine(t, 10)

	set := engine.Recommend(Request{
		Latitude:       5.0,
		LandCoverLabel: "Arable Land",
	})

	assert.Equal(t, weather.ZoneTropical, set.ClimateZone)
}

func TestRecommendGarnish(t *testing.T) {
	engine := testEngine(t, 10)

	set := engine.Recommend(Request{
		Latitude:       48.2,
		LandCoverLabel: "Arable Land",
		Climate:        temperateClimate(),
		FarmSizeHa:     2.0,
	})

	require.GreaterOrEqual(t, len(set.Recommendations), 2)
	require.GreaterOrEqual(t, len(set.RotationPlan.Sequence), 2)
	assert.GreaterOrEqual(t, set.RotationPlan.TotalCycleMonths, 12)
	assert.LessOrEqual(t, set.RotationPlan.TotalCycleMonths, 18)

	for _, season := range SeasonOrder {
		_, ok := set.SeasonalCalendar[season]
		assert.True(t, ok, season)
	}

	assert.Positive(t, set.MarketInsights.TotalInvestment)

	for _, rec := range set.Recommendations {
		assert.LessOrEqual(t, len(rec.KeyAdvantages), 4)
		assert.LessOrEqual(t, len(rec.SuccessTips), 3)
		assert.NotEmpty(t, rec.SuccessTips)
	}
}

func TestRotationPlanNeedsTwoCrops(t *testing.T) {
	plan := buildRotationPlan([]Recommendation{{CropName: "Wheat", GrowingPeriodMonths: 6}})
	assert.Empty(t, plan.Sequence)
	assert.NotEmpty(t, plan.Note)
}

func TestRotationPlanPrefersCategoryDiversity(t *testing.T) {
	recs := []Recommendation{
		{CropName: "Cherry Tomatoes", Category: "Vegetable", GrowingPeriodMonths: 4},
		{CropName: "Wheat", Category: "Grain", GrowingPeriodMonths: 5},
		{CropName: "Basil", Category: "Herb", GrowingPeriodMonths: 3},
	}

	plan := buildRotationPlan(recs)

	require.GreaterOrEqual(t, len(plan.Sequence), 3)
	assert.NotEqual(t, plan.Sequence[0].Category, plan.Sequence[1].Category)
	assert.NotEqual(t, plan.Sequence[1].Category, plan.Sequence[2].Category)
	assert.GreaterOrEqual(t, plan.TotalCycleMonths, 12)
	assert.LessOrEqual(t, plan.TotalCycleMonths, 18)

	// Shortest growing period leads the sequence.
	assert.Equal(t, "Basil", plan.Sequence[0].Crop)
	assert.Equal(t, "Pest control through diversity", plan.Sequence[0].Benefit)
}

func TestRotationPlanRepeatsCropsToFillCycle(t *testing.T) {
	recs := []Recommendation{
		{CropName: "Broccoli", Category: "Vegetable", GrowingPeriodMonths: 3},
		{CropName: "Basil", Category: "Herb", GrowingPeriodMonths: 3},
	}

	plan := buildRotationPlan(recs)

	// Two 3-month crops must repeat to cover a full year.
	require.Len(t, plan.Sequence, 4)
	assert.Equal(t, 12, plan.TotalCycleMonths)
}

func TestFallbackSuggestions(t *testing.T) {
	engine := testEngine(t, 10)

	cases := []struct {
		lat   float64
		first string
	}{
		{5.0, "Rice"},
		{-10.0, "Rice"},
		{30.0, "Corn"},
		{48.0, "Wheat"},
		{-55.0, "Wheat"},
	}

	for _, tc := range cases {
		suggestions := engine.FallbackSuggestions(tc.lat)
		require.Len(t, suggestions, 3, "lat=%f", tc.lat)
		assert.Equal(t, tc.first, suggestions[0].CropName)
		assert.Equal(t, 1, suggestions[0].Rank)
	}
}

func TestProfileByName(t *testing.T) {
	kb := loadTestKB(t)

	assert.NotNil(t, kb.ProfileByName("Wheat"))
	assert.Nil(t, kb.ProfileByName("Dragonfruit"))
}
