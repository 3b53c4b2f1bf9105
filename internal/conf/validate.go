package conf

import (
	"fmt"
	"slices"
)

var validRiskTolerances = []string{"low", "medium", "high"}
var validImageryProviders = []string{"arcgis", "mapbox"}
var validWeatherProviders = []string{"openmeteo", "none"}

// ValidateSettings checks cross-field constraints that viper cannot express.
func ValidateSettings(settings *Settings) error {
	if settings.Analysis.MaxConcurrency < 1 {
		return fmt.Errorf("analysis.maxconcurrency must be at least 1, got %d",
			settings.Analysis.MaxConcurrency)
	}
	if settings.Analysis.SampleTimeout <= 0 {
		return fmt.Errorf("analysis.sampletimeout must be positive, got %v",
			settings.Analysis.SampleTimeout)
	}
	if settings.Analysis.Threshold < 0 || settings.Analysis.Threshold > 1 {
		return fmt.Errorf("analysis.threshold must be within [0,1], got %f",
			settings.Analysis.Threshold)
	}

	if !slices.Contains(validImageryProviders, settings.Imagery.Provider) {
		return fmt.Errorf("unsupported imagery provider: %s", settings.Imagery.Provider)
	}
	if settings.Imagery.Provider == "mapbox" && settings.Imagery.Mapbox.AccessToken == "" {
		return fmt.Errorf("imagery.mapbox.accesstoken is required for the mapbox provider")
	}

	if !slices.Contains(validWeatherProviders, settings.Weather.Provider) {
		return fmt.Errorf("unsupported weather provider: %s", settings.Weather.Provider)
	}

	if settings.Crops.TopN < 1 {
		return fmt.Errorf("crops.topn must be at least 1, got %d", settings.Crops.TopN)
	}
	if settings.Crops.DefaultFarmSizeHa <= 0 {
		return fmt.Errorf("crops.defaultfarmsizeha must be positive, got %f",
			settings.Crops.DefaultFarmSizeHa)
	}
	if !slices.Contains(validRiskTolerances, settings.Crops.DefaultRiskTolerance) {
		return fmt.Errorf("crops.defaultrisktolerance must be one of %v, got %s",
			validRiskTolerances, settings.Crops.DefaultRiskTolerance)
	}

	return nil
}
