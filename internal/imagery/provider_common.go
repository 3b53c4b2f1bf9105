package imagery

import (
	"math"
	"time"

	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

const (
	RequestTimeout = 10 * time.Second
	UserAgent      = "AgriSight-Go https://github.com/mlaakso/agrisight-go"
	RetryDelay     = 2 * time.Second
	MaxRetries     = 3
)

// newImageryError creates a standardized imagery error with common fields
func newImageryError(err error, category errors.ErrorCategory, operation, provider string) error {
	return errors.New(err).
		Component("imagery").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Build()
}

// tileXY converts a coordinate to slippy-map tile numbers at the given
// zoom level.
func tileXY(coord geo.Coordinate, zoom int) (x, y int) {
	latRad := coord.Lat * math.Pi / 180.0
	n := math.Pow(2, float64(zoom))
	x = int((coord.Lon + 180.0) / 360.0 * n)
	y = int((1.0 - math.Asinh(math.Tan(latRad))/math.Pi) / 2.0 * n)
	return x, y
}
