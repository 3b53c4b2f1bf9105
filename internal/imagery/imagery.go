// Package imagery acquires satellite images for sample coordinates. The
// actual pixels come from external tile or static-map services; this
// package hides the provider differences behind a single interface and
// caches tiles so adjacent samples at the same zoom do not refetch.
package imagery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/logging"
	"github.com/mlaakso/agrisight-go/internal/observability/metrics"
)

var imageryLogger *slog.Logger

func init() {
	var err error
	imageryLogger, _, err = logging.NewFileLogger("logs/imagery.log", "imagery", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, nil)
		imageryLogger = slog.New(fbHandler).With("service", "imagery")
	}
}

// Image is a raw satellite image for one sample coordinate.
type Image struct {
	Data        []byte
	ContentType string
	Coordinate  geo.Coordinate
	Zoom        int
	Provider    string
}

// Provider fetches a raw image covering the coordinate at the given zoom.
type Provider interface {
	Fetch(ctx context.Context, coord geo.Coordinate, zoom int) (*Image, error)
	Name() string
}

// Service wraps a Provider with caching and metrics.
type Service struct {
	provider Provider
	cache    *gocache.Cache
	metrics  *metrics.ImageryMetrics
}

// NewService creates an imagery service with the provider selected by
// configuration.
func NewService(settings *conf.Settings, imageryMetrics *metrics.ImageryMetrics) (*Service, error) {
	var provider Provider

	switch settings.Imagery.Provider {
	case "arcgis":
		provider = NewArcgisProvider(settings.Imagery.Arcgis)
	case "mapbox":
		provider = NewMapboxProvider(settings.Imagery.Mapbox)
	default:
		return nil, errors.Newf("invalid imagery provider: %s", settings.Imagery.Provider).
			Component("imagery").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Imagery.Provider).
			Build()
	}

	ttl := settings.Imagery.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Service{
		provider: provider,
		cache:    gocache.New(ttl, 2*ttl),
		metrics:  imageryMetrics,
	}, nil
}

// Fetch returns imagery for the coordinate, serving repeated requests for
// the same tile from cache.
func (s *Service) Fetch(ctx context.Context, coord geo.Coordinate, zoom int) (*Image, error) {
	key := s.provider.Name() + "/" + cacheKey(coord, zoom)
	if cached, found := s.cache.Get(key); found {
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.provider.Name())
		}
		return cached.(*Image), nil
	}

	start := time.Now()
	img, err := s.provider.Fetch(ctx, coord, zoom)
	if s.metrics != nil {
		s.metrics.RecordFetch(s.provider.Name(), time.Since(start), err)
	}
	if err != nil {
		imageryLogger.Error("image fetch failed",
			"provider", s.provider.Name(),
			"lat", coord.Lat, "lon", coord.Lon, "zoom", zoom,
			"error", err)
		return nil, err
	}

	s.cache.SetDefault(key, img)
	return img, nil
}

// ProviderName returns the name of the configured provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// cacheKey buckets nearby coordinates together at tile granularity so grid
// neighbors sharing a tile share a cache entry.
func cacheKey(coord geo.Coordinate, zoom int) string {
	x, y := tileXY(coord, zoom)
	return fmt.Sprintf("%d/%d/%d", zoom, x, y)
}
