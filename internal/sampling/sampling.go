// Package sampling decides how many imagery samples a region needs and at
// which resolution tier, then realizes the sample grid. Coarser tiers cover
// more ground per sample and are used for larger areas, so big parcels do
// not explode into thousands of classifier calls while small ones still
// capture in-field heterogeneity.
package sampling

import (
	"math"

	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

// Mode selects between single point and polygon analysis.
type Mode string

const (
	ModePoint   Mode = "point"
	ModePolygon Mode = "polygon"
)

// Region is the analysis request area: a single coordinate or a polygon.
type Region struct {
	Mode    Mode
	Point   geo.Coordinate
	Polygon geo.Polygon
}

// Tier maps an area upper bound to an imagery zoom level and the sample
// count range appropriate for it.
type Tier struct {
	MaxAreaHa  float64 // upper bound in hectares, inclusive
	Zoom       int
	MinSamples int
	MaxSamples int
}

// PointZoom is the resolution tier used for single point analysis. A lower
// zoom captures more surrounding context for an isolated coordinate.
const PointZoom = 15

// SamplesPerHectare is the target sampling density before tier clamping.
const SamplesPerHectare = 5.0

// tierTable is ordered by ascending area. The last entry is the catch-all
// for anything larger.
var tierTable = []Tier{
	{MaxAreaHa: 1, Zoom: 17, MinSamples: 5, MaxSamples: 10},
	{MaxAreaHa: 10, Zoom: 16, MinSamples: 8, MaxSamples: 15},
	{MaxAreaHa: 100, Zoom: 15, MinSamples: 12, MaxSamples: 30},
	{MaxAreaHa: math.Inf(1), Zoom: 14, MinSamples: 20, MaxSamples: 50},
}

// Plan is the sampling decision for one region: which coordinates to
// classify and at which zoom level.
type Plan struct {
	Mode         Mode
	Zoom         int
	AreaHectares float64
	Samples      []geo.Coordinate
}

// TierFor returns the tier for the given area in hectares.
func TierFor(areaHa float64) Tier {
	for _, t := range tierTable {
		if areaHa <= t.MaxAreaHa {
			return t
		}
	}
	return tierTable[len(tierTable)-1]
}

// New builds a sampling plan for the region. Point regions always get a
// single sample at the finest point tier. Polygon regions get a grid whose
// size is the area-scaled density clamped into the selected tier's range.
// The realized count may deviate from the target, grid retention is not
// exact; only the tier ceiling is enforced.
func New(region Region) (*Plan, error) {
	if region.Mode == ModePoint {
		return &Plan{
			Mode:    ModePoint,
			Zoom:    PointZoom,
			Samples: []geo.Coordinate{region.Point},
		}, nil
	}

	areaHa, err := geo.AreaHectares(region.Polygon)
	if err != nil {
		return nil, err
	}
	if areaHa == 0 {
		return nil, errors.New(errors.ErrInvalidGeometry).
			Component("sampling").
			Category(errors.CategoryGeometry).
			Context("reason", "zero area polygon").
			Build()
	}

	tier := TierFor(areaHa)
	target := clamp(int(math.Round(areaHa*SamplesPerHectare)), tier.MinSamples, tier.MaxSamples)

	samples, err := geo.GridSamples(region.Polygon, target)
	if err != nil {
		return nil, err
	}
	samples = geo.Thin(samples, tier.MaxSamples)

	return &Plan{
		Mode:         ModePolygon,
		Zoom:         tier.Zoom,
		AreaHectares: areaHa,
		Samples:      samples,
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
