package sampling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

const metersPerDegreeLat = geo.EarthRadiusMeters * math.Pi / 180.0

func squareAt(lat, lon, sideMeters float64) geo.Polygon {
	dLat := sideMeters / metersPerDegreeLat
	dLon := sideMeters / (metersPerDegreeLat * math.Cos(lat*math.Pi/180.0))
	return geo.Polygon{
		{Lat: lat, Lon: lon},
		{Lat: lat + dLat, Lon: lon},
		{Lat: lat + dLat, Lon: lon + dLon},
		{Lat: lat, Lon: lon + dLon},
	}
}

func TestPlanPointMode(t *testing.T) {
	pt := geo.Coordinate{Lat: 60.17, Lon: 24.94}

	plan, err := New(Region{Mode: ModePoint, Point: pt})
	require.NoError(t, err)

	assert.Equal(t, PointZoom, plan.Zoom)
	require.Len(t, plan.Samples, 1)
	assert.Equal(t, pt, plan.Samples[0])
}

func TestPlanOneHectareSquare(t *testing.T) {
	// 100m x 100m is about one hectare, the finest polygon tier
	region := Region{Mode: ModePolygon, Polygon: squareAt(37.0, -121.0, 100)}

	plan, err := New(region)
	require.NoError(t, err)

	tier := TierFor(plan.AreaHectares)
	assert.Equal(t, 17, tier.Zoom)
	assert.Equal(t, tier.Zoom, plan.Zoom)
	assert.InDelta(t, 1.0, plan.AreaHectares, 0.01)
	assert.GreaterOrEqual(t, len(plan.Samples), tier.MinSamples)
	assert.LessOrEqual(t, len(plan.Samples), tier.MaxSamples)
}

func TestPlanSamplesInsidePolygon(t *testing.T) {
	poly := squareAt(52.0, 13.0, 800)
	plan, err := New(Region{Mode: ModePolygon, Polygon: poly})
	require.NoError(t, err)

	for _, s := range plan.Samples {
		assert.True(t, geo.PointInPolygon(s, poly))
	}
}

func TestPlanLargeAreaUsesCoarserTier(t *testing.T) {
	// 2km x 2km = 400 hectares, beyond the last bounded tier
	plan, err := New(Region{Mode: ModePolygon, Polygon: squareAt(45.0, 9.0, 2000)})
	require.NoError(t, err)

	assert.Equal(t, 14, plan.Zoom)
	assert.LessOrEqual(t, len(plan.Samples), 50)
	assert.GreaterOrEqual(t, len(plan.Samples), 20)
}

func TestPlanRejectsInvalidPolygon(t *testing.T) {
	_, err := New(Region{Mode: ModePolygon, Polygon: geo.Polygon{{Lat: 1, Lon: 1}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidGeometry))
}

func TestPlanRejectsZeroAreaPolygon(t *testing.T) {
	collinear := geo.Polygon{
		{Lat: 10, Lon: 20},
		{Lat: 10, Lon: 21},
		{Lat: 10, Lon: 22},
	}
	_, err := New(Region{Mode: ModePolygon, Polygon: collinear})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidGeometry))
}

func TestTierForBoundaries(t *testing.T) {
	tests := []struct {
		areaHa   float64
		wantZoom int
	}{
		{0.5, 17},
		{1.0, 17},
		{5, 16},
		{50, 15},
		{500, 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantZoom, TierFor(tt.areaHa).Zoom, "area %.1f ha", tt.areaHa)
	}
}
