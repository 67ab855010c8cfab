package geo_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargespot/chargespot/internal/geo"
)

func TestToWebMercator_Origin(t *testing.T) {
	p, err := geo.ToWebMercator(geo.Point{X: 0, Y: 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestToWebMercator_KnownPoint(t *testing.T) {
	// Amsterdam Central Station
	p, err := geo.ToWebMercator(geo.Point{X: 4.9003, Y: 52.3791})
	require.NoError(t, err)
	assert.InDelta(t, 545490, p.X, 100)
	assert.InDelta(t, 6867556, p.Y, 100)
}

func TestToWebMercator_OutOfRange(t *testing.T) {
	_, err := geo.ToWebMercator(geo.Point{X: 0, Y: 89})
	assert.Error(t, err)

	_, err = geo.ToWebMercator(geo.Point{X: 181, Y: 0})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	orig := geo.Point{X: 4.9003, Y: 52.3791}

	projected, err := geo.ToWebMercator(orig)
	require.NoError(t, err)

	back, err := geo.ToWGS84(projected)
	require.NoError(t, err)
	assert.InDelta(t, orig.X, back.X, 1e-9)
	assert.InDelta(t, orig.Y, back.Y, 1e-9)
}

func TestTransform(t *testing.T) {
	p := geo.Point{X: 4.9, Y: 52.4}

	same, err := geo.Transform(p, geo.CRSWGS84)
	require.NoError(t, err)
	assert.Equal(t, p, same)

	_, err = geo.Transform(p, 28992)
	assert.ErrorIs(t, err, geo.ErrUnsupportedCRS)
}

func TestTransformOrFallback(t *testing.T) {
	// Valid transform goes through
	p := geo.TransformOrFallback(geo.Point{X: 0, Y: 0}, geo.CRSWebMercator, zerolog.Nop())
	assert.InDelta(t, 0, p.X, 1e-9)

	// Out-of-range latitude falls back to the untransformed input
	in := geo.Point{X: 0, Y: 89}
	out := geo.TransformOrFallback(in, geo.CRSWebMercator, zerolog.Nop())
	assert.Equal(t, in, out)
}

func TestHaversine(t *testing.T) {
	amsterdam := geo.Point{X: 4.9041, Y: 52.3676}
	utrecht := geo.Point{X: 5.1214, Y: 52.0907}

	d := geo.Haversine(amsterdam, utrecht)
	assert.InDelta(t, 34, d, 1.5)

	assert.InDelta(t, 0, geo.Haversine(amsterdam, amsterdam), 1e-9)
}

func TestSearchCircle(t *testing.T) {
	center := geo.Point{X: 4.9, Y: 52.37}
	ring := geo.SearchCircle(center, 5, 32)

	require.Len(t, ring, 33)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	// Every vertex sits on the circle
	for _, p := range ring {
		assert.InDelta(t, 5, geo.Haversine(center, p), 0.05)
	}
}

func TestSearchCircle_MinimumSegments(t *testing.T) {
	ring := geo.SearchCircle(geo.Point{}, 1, 2)
	assert.Len(t, ring, 9)
}

func TestBoundingBox(t *testing.T) {
	_, _, ok := geo.BoundingBox(nil)
	assert.False(t, ok)

	min, max, ok := geo.BoundingBox([]geo.Point{
		{X: 1, Y: 5},
		{X: -2, Y: 7},
		{X: 3, Y: 6},
	})
	require.True(t, ok)
	assert.Equal(t, geo.Point{X: -2, Y: 5}, min)
	assert.Equal(t, geo.Point{X: 3, Y: 7}, max)
}
