package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

const (
	RequestTimeout = 10 * time.Second
	UserAgent      = "AgriSight-Go https://github.com/mlaakso/agrisight-go"
	RetryDelay     = 2 * time.Second
	MaxRetries     = 3

	// weeksPerYear scales the 7-day precipitation sum to a rough annual
	// estimate, the same approximation agronomists accept for screening.
	weeksPerYear = 52.0
)

// OpenMeteoResponse represents the forecast payload returned by Open-Meteo.
type OpenMeteoResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
		Precipitation      float64 `json:"precipitation"`
	} `json:"current"`
	Daily struct {
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// OpenMeteoProvider fetches climate observations from the free Open-Meteo
// forecast API. No API key required.
type OpenMeteoProvider struct {
	endpoint string
}

// NewOpenMeteoProvider creates a new Open-Meteo provider
func NewOpenMeteoProvider(settings conf.WeatherSettings) *OpenMeteoProvider {
	return &OpenMeteoProvider{endpoint: settings.Endpoint}
}

// Name implements the Provider interface
func (p *OpenMeteoProvider) Name() string { return "openmeteo" }

// FetchObservations implements the Provider interface for OpenMeteoProvider
func (p *OpenMeteoProvider) FetchObservations(ctx context.Context, coord geo.Coordinate) (*Observations, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f"+
		"&current=temperature_2m,relative_humidity_2m,precipitation"+
		"&daily=temperature_2m_max,temperature_2m_min,precipitation_sum"+
		"&timezone=auto&forecast_days=7",
		p.endpoint, coord.Lat, coord.Lon)

	client := &http.Client{
		Timeout: RequestTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, newWeatherError(fmt.Errorf("error creating request: %w", err),
			errors.CategoryWeather, "create_request", p.Name())
	}
	req.Header.Set("User-Agent", UserAgent)

	var decoded OpenMeteoResponse
	for i := 0; i < MaxRetries; i++ {
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, newWeatherError(ctx.Err(), errors.CategoryTimeout, "fetch_forecast", p.Name())
			}
			if i == MaxRetries-1 {
				return nil, newWeatherError(fmt.Errorf("error fetching forecast: %w", err),
					errors.CategoryNetwork, "fetch_forecast", p.Name())
			}
			time.Sleep(RetryDelay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if i == MaxRetries-1 {
				return nil, newWeatherError(fmt.Errorf("received non-200 response: %d", resp.StatusCode),
					errors.CategoryWeather, "fetch_forecast", p.Name())
			}
			time.Sleep(RetryDelay)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, newWeatherError(fmt.Errorf("error reading response body: %w", err),
				errors.CategoryWeather, "read_body", p.Name())
		}
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, newWeatherError(fmt.Errorf("error parsing forecast: %w", err),
				errors.CategoryWeather, "parse_forecast", p.Name())
		}
		break
	}

	return p.toObservations(&decoded), nil
}

// toObservations reduces the 7-day forecast to screening-level climate
// estimates: mean of daily max/min temperatures, weekly precipitation
// scaled to a year.
func (p *OpenMeteoProvider) toObservations(resp *OpenMeteoResponse) *Observations {
	avgTemp := resp.Current.Temperature2m
	if len(resp.Daily.Temperature2mMax) > 0 && len(resp.Daily.Temperature2mMin) > 0 {
		var maxSum, minSum float64
		for _, v := range resp.Daily.Temperature2mMax {
			maxSum += v
		}
		for _, v := range resp.Daily.Temperature2mMin {
			minSum += v
		}
		avgMax := maxSum / float64(len(resp.Daily.Temperature2mMax))
		avgMin := minSum / float64(len(resp.Daily.Temperature2mMin))
		avgTemp = (avgMax + avgMin) / 2
	}

	var weeklyPrecip float64
	for _, v := range resp.Daily.PrecipitationSum {
		weeklyPrecip += v
	}

	return &Observations{
		AvgTemperatureC:  avgTemp,
		AnnualRainfallMm: weeklyPrecip * weeksPerYear,
		HumidityPercent:  resp.Current.RelativeHumidity2m,
	}
}

// newWeatherError creates a standardized weather error with common fields
func newWeatherError(err error, category errors.ErrorCategory, operation, provider string) error {
	return errors.New(err).
		Component("weather").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Build()
}
