// Package geo implements the planar geometry used to turn map polygons
// into measurable, sampleable regions. The math uses an equirectangular
// approximation which is accurate enough for sub-100km2 agricultural
// parcels; it is not a geodetic library.
package geo

import (
	"math"

	"github.com/mlaakso/agrisight-go/internal/errors"
)

// EarthRadiusMeters is the mean Earth radius used by the planar projection.
const EarthRadiusMeters = 6371000.0

// metersPerDegreeLat is EarthRadiusMeters * pi / 180.
const metersPerDegreeLat = EarthRadiusMeters * math.Pi / 180.0

// Coordinate is an immutable WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Polygon is an ordered sequence of vertices, implicitly closed. A valid
// polygon has at least three vertices. Self-intersecting polygons are
// accepted but area and sampling results are undefined for them.
type Polygon []Coordinate

// Bounds is the axis-aligned bounding box of a polygon in degrees.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Validate rejects polygons that cannot enclose area.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return errors.New(errors.ErrInvalidGeometry).
			Component("geo").
			Category(errors.CategoryGeometry).
			Context("vertices", len(p)).
			Build()
	}
	return nil
}

// Bounds returns the bounding box of the polygon. Caller must ensure the
// polygon is non-empty.
func (p Polygon) Bounds() Bounds {
	b := Bounds{
		MinLat: p[0].Lat, MaxLat: p[0].Lat,
		MinLon: p[0].Lon, MaxLon: p[0].Lon,
	}
	for _, c := range p[1:] {
		b.MinLat = math.Min(b.MinLat, c.Lat)
		b.MaxLat = math.Max(b.MaxLat, c.Lat)
		b.MinLon = math.Min(b.MinLon, c.Lon)
		b.MaxLon = math.Max(b.MaxLon, c.Lon)
	}
	return b
}

// Centroid returns the vertex mean of the polygon. For concave polygons the
// result may fall outside the boundary, which the grid sampler tolerates as
// a documented limitation of the centroid fallback.
func (p Polygon) Centroid() Coordinate {
	var lat, lon float64
	for _, c := range p {
		lat += c.Lat
		lon += c.Lon
	}
	n := float64(len(p))
	return Coordinate{Lat: lat / n, Lon: lon / n}
}

// project maps a coordinate to local meters using an equirectangular
// approximation centered on origin.
func project(c, origin Coordinate) (x, y float64) {
	cosLat := math.Cos(origin.Lat * math.Pi / 180.0)
	x = (c.Lon - origin.Lon) * cosLat * metersPerDegreeLat
	y = (c.Lat - origin.Lat) * metersPerDegreeLat
	return x, y
}

// AreaHectares computes the planar polygon area in hectares via the
// shoelace formula after projecting vertices to local meters around the
// first vertex. The result is invariant under vertex order reversal and
// under redundantly closing the polygon.
func AreaHectares(p Polygon) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	origin := p[0]
	n := len(p)

	var area float64
	for i := range n {
		j := (i + 1) % n
		xi, yi := project(p[i], origin)
		xj, yj := project(p[j], origin)
		area += xi*yj - xj*yi
	}
	area = math.Abs(area) / 2.0 // square meters

	return area / 10000.0, nil
}

// PointInPolygon reports whether pt lies inside the polygon using ray
// casting against the polygon edges. Points exactly on a boundary edge are
// treated as inside where the intersection test catches them; this is a
// documented implementation detail, not a guarantee.
func PointInPolygon(pt Coordinate, p Polygon) bool {
	n := len(p)
	if n < 3 {
		return false
	}

	inside := false
	p1 := p[0]
	for i := 1; i <= n; i++ {
		p2 := p[i%n]
		if pt.Lon > math.Min(p1.Lon, p2.Lon) &&
			pt.Lon <= math.Max(p1.Lon, p2.Lon) &&
			pt.Lat <= math.Max(p1.Lat, p2.Lat) {
			var xinters float64
			if p1.Lon != p2.Lon {
				xinters = (pt.Lon-p1.Lon)*(p2.Lat-p1.Lat)/(p2.Lon-p1.Lon) + p1.Lat
			}
			if p1.Lat == p2.Lat || pt.Lat <= xinters {
				inside = !inside
			}
		}
		p1 = p2
	}

	return inside
}
