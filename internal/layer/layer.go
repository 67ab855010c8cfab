// Package layer turns a station result set into GeoJSON map layers:
// one point feature per station with display attributes and categorized
// status styling, plus an optional search-area polygon.
package layer

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/geo"
	"github.com/chargespot/chargespot/internal/station"
)

// FeatureCollection is a GeoJSON FeatureCollection. BBox is the
// [minX, minY, maxX, maxY] extent of the station points, for map
// viewport fitting; omitted when the collection is empty.
type FeatureCollection struct {
	Type     string    `json:"type"`
	BBox     []float64 `json:"bbox,omitempty"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry is a GeoJSON geometry; Coordinates is [x, y] for points and
// a ring list for polygons.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Marker describes how a station point should be drawn.
type Marker struct {
	Shape string `json:"shape"`
	Color string `json:"color"`
}

// statusMarkers is the categorized symbology keyed by station status.
var statusMarkers = map[string]Marker{
	"Operational":    {Shape: "circle", Color: "green"},
	"Available":      {Shape: "circle", Color: "green"},
	"Out of Service": {Shape: "cross", Color: "red"},
	"Planned":        {Shape: "triangle", Color: "blue"},
	station.Unknown:  {Shape: "circle", Color: "orange"},
}

// defaultMarker covers statuses without a dedicated category.
var defaultMarker = Marker{Shape: "circle", Color: "gray"}

// MarkerForStatus returns the marker style for a station status.
func MarkerForStatus(status string) Marker {
	if m, ok := statusMarkers[status]; ok {
		return m
	}
	return defaultMarker
}

// Options controls layer generation.
type Options struct {
	// TargetCRS is the output coordinate system, geo.CRSWGS84 (default)
	// or geo.CRSWebMercator. Transform failures fall back to the WGS84
	// coordinates with a logged warning.
	TargetCRS int

	// SegmentCount for the search-area circle approximation (default 64).
	SegmentCount int
}

// Builder renders station sets as GeoJSON.
type Builder struct {
	logger zerolog.Logger
}

// NewBuilder creates a layer builder.
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{logger: logger}
}

// StationCollection builds one point feature per station, carrying the
// attribute set shown on the map plus the categorized marker style.
func (b *Builder) StationCollection(stations []*station.Station, opts Options) FeatureCollection {
	targetCRS := opts.TargetCRS
	if targetCRS == 0 {
		targetCRS = geo.CRSWGS84
	}

	features := make([]Feature, 0, len(stations))
	points := make([]geo.Point, 0, len(stations))
	for _, s := range stations {
		p := geo.TransformOrFallback(geo.Point{X: s.Longitude, Y: s.Latitude}, targetCRS, b.logger)
		points = append(points, p)

		props := map[string]interface{}{
			"id":               s.ID,
			"name":             s.Name,
			"address":          s.Address,
			"operator":         s.Operator,
			"status":           s.Status,
			"access_type":      s.AccessType,
			"num_points":       s.NumPoints,
			"connection_types": strings.Join(s.ConnectionTypes, ", "),
			"power_levels":     strings.Join(s.PowerLevels, ", "),
			"phone":            s.Phone,
			"url":              s.URL,
			"marker":           MarkerForStatus(s.Status),
		}
		if s.Distance != nil {
			props["distance_km"] = *s.Distance
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{p.X, p.Y},
			},
			Properties: props,
		})
	}

	fc := FeatureCollection{Type: "FeatureCollection", Features: features}
	if min, max, ok := geo.BoundingBox(points); ok {
		fc.BBox = []float64{min.X, min.Y, max.X, max.Y}
	}
	return fc
}

// SearchArea builds the polygon feature for the search radius around
// the query center.
func (b *Builder) SearchArea(centerLat, centerLon, radiusKm float64, opts Options) Feature {
	targetCRS := opts.TargetCRS
	if targetCRS == 0 {
		targetCRS = geo.CRSWGS84
	}
	segments := opts.SegmentCount
	if segments == 0 {
		segments = 64
	}

	ring := geo.SearchCircle(geo.Point{X: centerLon, Y: centerLat}, radiusKm, segments)
	coords := make([][]float64, 0, len(ring))
	for _, p := range ring {
		tp := geo.TransformOrFallback(p, targetCRS, b.logger)
		coords = append(coords, []float64{tp.X, tp.Y})
	}

	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Polygon",
			Coordinates: [][][]float64{coords},
		},
		Properties: map[string]interface{}{
			"kind":      "search_area",
			"radius_km": radiusKm,
			"center":    []float64{centerLon, centerLat},
		},
	}
}
