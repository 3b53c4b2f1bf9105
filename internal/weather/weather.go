// Package weather supplies the climate context the crop engine scores
// against: average temperature, estimated annual rainfall, climate zone and
// growing season length for a coordinate.
package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/logging"
	"github.com/mlaakso/agrisight-go/internal/observability/metrics"
)

var weatherLogger *slog.Logger

func init() {
	var err error
	weatherLogger, _, err = logging.NewFileLogger("logs/weather.log", "weather", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, nil)
		weatherLogger = slog.New(fbHandler).With("service", "weather")
	}
}

// Climate zones used for crop matching.
const (
	ZoneTropical    = "tropical"
	ZoneSubtropical = "subtropical"
	ZoneTemperate   = "temperate"
	ZoneCold        = "cold"
)

// Defaults used when no provider data is available. Values match a mild
// mid-latitude growing climate so recommendations degrade gracefully.
const (
	DefaultAvgTemperatureC  = 20.0
	DefaultAnnualRainfallMm = 800.0
)

// Observations is raw provider output for one coordinate.
type Observations struct {
	AvgTemperatureC  float64
	AnnualRainfallMm float64
	HumidityPercent  float64
}

// Climate is the full climate context for a coordinate, combining provider
// observations with latitude-derived zone data.
type Climate struct {
	AvgTemperatureC     float64 `json:"avg_temperature_c"`
	AnnualRainfallMm    float64 `json:"annual_rainfall_mm"`
	ClimateZone         string  `json:"climate_zone"`
	Hemisphere          string  `json:"hemisphere"`
	GrowingSeasonMonths int     `json:"growing_season_months"`

	// Estimated is true when provider data was unavailable and defaults
	// were substituted.
	Estimated bool `json:"estimated"`
}

// Provider fetches raw climate observations for a coordinate.
type Provider interface {
	FetchObservations(ctx context.Context, coord geo.Coordinate) (*Observations, error)
	Name() string
}

// Service resolves climate context with caching and graceful degradation.
type Service struct {
	provider Provider
	cache    *gocache.Cache
	metrics  *metrics.WeatherMetrics
}

// NewService creates a weather service with the provider selected by
// configuration. Provider "none" disables fetching; every lookup then
// returns the flagged defaults.
func NewService(settings *conf.Settings, weatherMetrics *metrics.WeatherMetrics) (*Service, error) {
	var provider Provider

	switch settings.Weather.Provider {
	case "openmeteo":
		provider = NewOpenMeteoProvider(settings.Weather)
	case "none":
		provider = nil
	default:
		return nil, errors.New(fmt.Errorf("invalid weather provider: %s", settings.Weather.Provider)).
			Component("weather").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Weather.Provider).
			Build()
	}

	ttl := settings.Weather.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Service{
		provider: provider,
		cache:    gocache.New(ttl, 2*ttl),
		metrics:  weatherMetrics,
	}, nil
}

// GetClimate returns the climate context for a coordinate. Provider
// failures never fail the lookup; defaults are substituted and flagged.
func (s *Service) GetClimate(ctx context.Context, coord geo.Coordinate) *Climate {
	key := cacheKey(coord)
	if cached, found := s.cache.Get(key); found {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
		}
		return cached.(*Climate)
	}

	if s.provider == nil {
		return DeriveClimate(coord.Lat)
	}

	climate := deriveFromLatitude(coord.Lat)

	start := time.Now()
	obs, err := s.provider.FetchObservations(ctx, coord)
	if s.metrics != nil {
		s.metrics.RecordFetch(s.provider.Name(), time.Since(start), err)
	}
	if err != nil {
		weatherLogger.Warn("climate fetch failed, using defaults",
			"provider", s.provider.Name(),
			"lat", coord.Lat, "lon", coord.Lon,
			"error", err)
		climate.AvgTemperatureC = DefaultAvgTemperatureC
		climate.AnnualRainfallMm = DefaultAnnualRainfallMm
		climate.Estimated = true
	} else {
		climate.AvgTemperatureC = obs.AvgTemperatureC
		climate.AnnualRainfallMm = obs.AnnualRainfallMm
	}

	s.cache.SetDefault(key, climate)
	return climate
}

// ZoneForLatitude maps a latitude to its climate zone.
func ZoneForLatitude(lat float64) string {
	absLat := math.Abs(lat)
	switch {
	case absLat < 23.5:
		return ZoneTropical
	case absLat < 35:
		return ZoneSubtropical
	case absLat < 50:
		return ZoneTemperate
	default:
		return ZoneCold
	}
}

// GrowingSeasonMonths estimates the length of the growing season.
func GrowingSeasonMonths(zone string, lat float64) int {
	switch {
	case zone == ZoneTropical:
		return 12
	case zone == ZoneSubtropical:
		return 10
	case math.Abs(lat) < 45:
		return 6
	default:
		return 4
	}
}

// DeriveClimate builds a climate context from latitude alone, with the
// default temperature and rainfall flagged as estimated. Used when no
// provider data is reachable.
func DeriveClimate(lat float64) *Climate {
	climate := deriveFromLatitude(lat)
	climate.AvgTemperatureC = DefaultAvgTemperatureC
	climate.AnnualRainfallMm = DefaultAnnualRainfallMm
	climate.Estimated = true
	return climate
}

func deriveFromLatitude(lat float64) *Climate {
	zone := ZoneForLatitude(lat)
	hemisphere := "northern"
	if lat < 0 {
		hemisphere = "southern"
	}
	return &Climate{
		ClimateZone:         zone,
		Hemisphere:          hemisphere,
		GrowingSeasonMonths: GrowingSeasonMonths(zone, lat),
	}
}

// cacheKey rounds coordinates to ~1km so nearby lookups share an entry.
func cacheKey(coord geo.Coordinate) string {
	return fmt.Sprintf("%.2f/%.2f", coord.Lat, coord.Lon)
}
