package geo

import "math"

// GridSamples lays a regular grid over the polygon's bounding box with
// spacing chosen so the number of grid cells is close to targetCount, and
// returns the grid points that fall inside the polygon. When no grid point
// lands inside, which happens for slivers and very small parcels, the
// polygon centroid is returned as the sole sample. The returned count is
// not guaranteed to equal targetCount; callers must tolerate deviation.
func GridSamples(p Polygon, targetCount int) ([]Coordinate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if targetCount < 1 {
		targetCount = 1
	}

	b := p.Bounds()
	latSpan := b.MaxLat - b.MinLat
	lonSpan := b.MaxLon - b.MinLon

	// Degenerate bounding box, nothing to sweep
	if latSpan <= 0 || lonSpan <= 0 {
		return []Coordinate{p.Centroid()}, nil
	}

	perAxis := math.Max(1, math.Ceil(math.Sqrt(float64(targetCount))))
	latStep := latSpan / perAxis
	lonStep := lonSpan / perAxis

	var samples []Coordinate
	// Offset by half a step so samples sit at cell centers rather than on
	// the bounding box edges
	for lat := b.MinLat + latStep/2; lat <= b.MaxLat; lat += latStep {
		for lon := b.MinLon + lonStep/2; lon <= b.MaxLon; lon += lonStep {
			pt := Coordinate{Lat: lat, Lon: lon}
			if PointInPolygon(pt, p) {
				samples = append(samples, pt)
			}
		}
	}

	if len(samples) == 0 {
		return []Coordinate{p.Centroid()}, nil
	}

	return samples, nil
}

// Thin selects up to maxCount evenly spaced elements from samples,
// preserving order. Used to honor a tier's sample ceiling without biasing
// toward one corner of the grid.
func Thin(samples []Coordinate, maxCount int) []Coordinate {
	if maxCount < 1 || len(samples) <= maxCount {
		return samples
	}
	if maxCount == 1 {
		return samples[:1]
	}

	thinned := make([]Coordinate, 0, maxCount)
	step := float64(len(samples)-1) / float64(maxCount-1)
	for i := range maxCount {
		idx := int(math.Round(float64(i) * step))
		thinned = append(thinned, samples[idx])
	}
	return thinned
}
