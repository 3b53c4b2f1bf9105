package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestSettings() *Settings {
	return &Settings{
		Analysis: AnalysisSettings{
			MaxConcurrency: 8,
			SampleTimeout:  15 * time.Second,
		},
		Imagery: ImagerySettings{Provider: "arcgis"},
		Weather: WeatherSettings{Provider: "openmeteo"},
		Crops: CropsSettings{
			TopN:                 10,
			DefaultFarmSizeHa:    1.0,
			DefaultRiskTolerance: "medium",
		},
	}
}

func TestValidateSettingsDefaults(t *testing.T) {
	require.NoError(t, ValidateSettings(defaultTestSettings()))
}

func TestValidateSettingsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero concurrency", func(s *Settings) { s.Analysis.MaxConcurrency = 0 }},
		{"negative timeout", func(s *Settings) { s.Analysis.SampleTimeout = -time.Second }},
		{"threshold above one", func(s *Settings) { s.Analysis.Threshold = 1.5 }},
		{"unknown imagery provider", func(s *Settings) { s.Imagery.Provider = "bing" }},
		{"mapbox without token", func(s *Settings) { s.Imagery.Provider = "mapbox" }},
		{"unknown weather provider", func(s *Settings) { s.Weather.Provider = "noaa" }},
		{"zero topn", func(s *Settings) { s.Crops.TopN = 0 }},
		{"zero farm size", func(s *Settings) { s.Crops.DefaultFarmSizeHa = 0 }},
		{"bad risk tolerance", func(s *Settings) { s.Crops.DefaultRiskTolerance = "reckless" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultTestSettings()
			tt.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}
