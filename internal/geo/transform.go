// Package geo provides the coordinate transforms and small geometry
// helpers that glue WGS84 API data to projected map output.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Supported coordinate reference systems, by EPSG code.
const (
	// CRSWGS84 is geographic lat/lon in decimal degrees (EPSG:4326).
	CRSWGS84 = 4326
	// CRSWebMercator is spherical Web Mercator in meters (EPSG:3857).
	CRSWebMercator = 3857
)

// earthRadiusM is the WGS84 spherical radius used by Web Mercator.
const earthRadiusM = 6378137.0

// mercatorMaxLat is the latitude limit of the Web Mercator projection.
const mercatorMaxLat = 85.051128779806

// ErrUnsupportedCRS indicates a CRS this package cannot transform to.
var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

// Point is a coordinate pair. In WGS84, X is longitude and Y is
// latitude; in Web Mercator both are meters.
type Point struct {
	X float64
	Y float64
}

// ToWebMercator projects a WGS84 point to EPSG:3857. Fails for points
// outside the projection's latitude range or with non-finite input.
func ToWebMercator(p Point) (Point, error) {
	if !finite(p) {
		return Point{}, fmt.Errorf("non-finite coordinates (%v, %v)", p.X, p.Y)
	}
	if p.Y < -mercatorMaxLat || p.Y > mercatorMaxLat {
		return Point{}, fmt.Errorf("latitude %f outside Web Mercator range [%f, %f]",
			p.Y, -mercatorMaxLat, mercatorMaxLat)
	}
	if p.X < -180 || p.X > 180 {
		return Point{}, fmt.Errorf("longitude %f out of range [-180, 180]", p.X)
	}

	x := earthRadiusM * p.X * math.Pi / 180
	y := earthRadiusM * math.Log(math.Tan(math.Pi/4+p.Y*math.Pi/360))
	return Point{X: x, Y: y}, nil
}

// ToWGS84 unprojects an EPSG:3857 point back to lon/lat degrees.
func ToWGS84(p Point) (Point, error) {
	if !finite(p) {
		return Point{}, fmt.Errorf("non-finite coordinates (%v, %v)", p.X, p.Y)
	}

	lon := p.X / earthRadiusM * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(p.Y/earthRadiusM)) - math.Pi/2) * 180 / math.Pi
	return Point{X: lon, Y: lat}, nil
}

// Transform converts a WGS84 point to the target CRS.
func Transform(p Point, targetCRS int) (Point, error) {
	switch targetCRS {
	case CRSWGS84:
		return p, nil
	case CRSWebMercator:
		return ToWebMercator(p)
	default:
		return Point{}, fmt.Errorf("EPSG:%d: %w", targetCRS, ErrUnsupportedCRS)
	}
}

// TransformOrFallback converts a WGS84 point to the target CRS and, on
// failure, logs the degradation and returns the input unchanged. This
// is a deliberate best-effort path for map output: the caller gets a
// drawable point in the wrong CRS rather than no point, and the log
// line makes the degradation visible.
func TransformOrFallback(p Point, targetCRS int, logger zerolog.Logger) Point {
	out, err := Transform(p, targetCRS)
	if err != nil {
		logger.Warn().
			Err(err).
			Int("target_crs", targetCRS).
			Float64("x", p.X).
			Float64("y", p.Y).
			Msg("coordinate transform failed, using untransformed coordinates")
		return p
	}
	return out
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
