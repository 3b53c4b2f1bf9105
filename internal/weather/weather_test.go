package weather

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

func testWeatherSettings(provider string) *conf.Settings {
	return &conf.Settings{
		Weather: conf.WeatherSettings{
			Provider: provider,
			Endpoint: "https://api.open-meteo.com/v1/forecast",
			CacheTTL: time.Minute,
		},
	}
}

func openMeteoSuccessResponse() map[string]any {
	return map[string]any{
		"latitude":  60.17,
		"longitude": 24.94,
		"current": map[string]any{
			"temperature_2m":       15.5,
			"relative_humidity_2m": 72.0,
			"precipitation":        0.2,
		},
		"daily": map[string]any{
			"temperature_2m_max": []float64{18, 19, 20, 18, 17, 19, 21},
			"temperature_2m_min": []float64{10, 11, 12, 10, 9, 11, 13},
			"precipitation_sum":  []float64{2, 0, 5, 1, 0, 3, 4},
		},
	}
}

func TestZoneForLatitude(t *testing.T) {
	tests := []struct {
		lat  float64
		want string
	}{
		{0, ZoneTropical},
		{-10, ZoneTropical},
		{23.4, ZoneTropical},
		{30, ZoneSubtropical},
		{-34, ZoneSubtropical},
		{45, ZoneTemperate},
		{-49.9, ZoneTemperate},
		{60.17, ZoneCold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ZoneForLatitude(tt.lat), "lat %.2f", tt.lat)
	}
}

func TestGrowingSeasonMonths(t *testing.T) {
	assert.Equal(t, 12, GrowingSeasonMonths(ZoneTropical, 10))
	assert.Equal(t, 10, GrowingSeasonMonths(ZoneSubtropical, 30))
	assert.Equal(t, 6, GrowingSeasonMonths(ZoneTemperate, 40))
	assert.Equal(t, 4, GrowingSeasonMonths(ZoneCold, 60))
}

func TestOpenMeteoProviderFetch(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/v1/forecast.*`,
		httpmock.NewJsonResponderOrPanic(200, openMeteoSuccessResponse()))

	provider := NewOpenMeteoProvider(testWeatherSettings("openmeteo").Weather)

	obs, err := provider.FetchObservations(context.Background(), geo.Coordinate{Lat: 60.17, Lon: 24.94})
	require.NoError(t, err)

	// Mean of daily max (18.857) and min (10.857) averages
	assert.InDelta(t, 14.857, obs.AvgTemperatureC, 0.01)
	// 15mm over the week scaled to a year
	assert.InDelta(t, 15*52.0, obs.AnnualRainfallMm, 0.01)
	assert.InDelta(t, 72.0, obs.HumidityPercent, 0.01)
}

func TestServiceUsesDefaultsOnProviderFailure(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/.*`,
		httpmock.NewStringResponder(404, "not found"))

	svc, err := NewService(testWeatherSettings("openmeteo"), nil)
	require.NoError(t, err)

	climate := svc.GetClimate(context.Background(), geo.Coordinate{Lat: 48.2, Lon: 16.4})
	require.NotNil(t, climate)
	assert.True(t, climate.Estimated)
	assert.InDelta(t, DefaultAvgTemperatureC, climate.AvgTemperatureC, 1e-9)
	assert.InDelta(t, DefaultAnnualRainfallMm, climate.AnnualRainfallMm, 1e-9)
	assert.Equal(t, ZoneTemperate, climate.ClimateZone)
	assert.Equal(t, "northern", climate.Hemisphere)
}

func TestServiceCachesClimate(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/.*`,
		httpmock.NewJsonResponderOrPanic(200, openMeteoSuccessResponse()))

	svc, err := NewService(testWeatherSettings("openmeteo"), nil)
	require.NoError(t, err)

	coord := geo.Coordinate{Lat: 60.17, Lon: 24.94}
	first := svc.GetClimate(context.Background(), coord)
	second := svc.GetClimate(context.Background(), coord)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestServiceProviderNone(t *testing.T) {
	svc, err := NewService(testWeatherSettings("none"), nil)
	require.NoError(t, err)

	climate := svc.GetClimate(context.Background(), geo.Coordinate{Lat: -12.0, Lon: -55.0})
	assert.True(t, climate.Estimated)
	assert.Equal(t, ZoneTropical, climate.ClimateZone)
	assert.Equal(t, "southern", climate.Hemisphere)
	assert.Equal(t, 12, climate.GrowingSeasonMonths)
}

func TestServiceRejectsUnknownProvider(t *testing.T) {
	_, err := NewService(testWeatherSettings("noaa"), nil)
	assert.Error(t, err)
}
