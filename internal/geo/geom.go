package geo

import "math"

// Haversine returns the great-circle distance in kilometers between two
// WGS84 points (X=lon, Y=lat).
func Haversine(a, b Point) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	dLat := (b.Y - a.Y) * math.Pi / 180
	dLon := (b.X - a.X) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// SearchCircle approximates the circle of the given radius around a
// WGS84 center as a closed polygon ring with the given number of
// segments (minimum 8). The first and last vertex are equal.
func SearchCircle(center Point, radiusKm float64, segments int) []Point {
	if segments < 8 {
		segments = 8
	}

	const earthRadiusKm = 6371.0
	angDist := radiusKm / earthRadiusKm
	lat1 := center.Y * math.Pi / 180
	lon1 := center.X * math.Pi / 180

	ring := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		bearing := 2 * math.Pi * float64(i) / float64(segments)

		lat2 := math.Asin(math.Sin(lat1)*math.Cos(angDist) +
			math.Cos(lat1)*math.Sin(angDist)*math.Cos(bearing))
		lon2 := lon1 + math.Atan2(
			math.Sin(bearing)*math.Sin(angDist)*math.Cos(lat1),
			math.Cos(angDist)-math.Sin(lat1)*math.Sin(lat2),
		)

		ring = append(ring, Point{
			X: math.Mod(lon2*180/math.Pi+540, 360) - 180,
			Y: lat2 * 180 / math.Pi,
		})
	}
	return ring
}

// BoundingBox returns the min/max corners of a point set. Returns false
// for an empty set.
func BoundingBox(points []Point) (min, max Point, ok bool) {
	if len(points) == 0 {
		return Point{}, Point{}, false
	}

	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max, true
}
