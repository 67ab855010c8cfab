package station

import (
	"math"
	"sort"
	"strings"
)

// FilterField selects which station field a filter matches against.
type FilterField string

const (
	// FieldAll disables filtering and returns the full set.
	FieldAll            FilterField = "All"
	FieldAccessType     FilterField = "access_type"
	FieldOperator       FilterField = "operator"
	FieldStatus         FilterField = "status"
	FieldConnectionType FilterField = "connection_type"
	FieldPowerLevel     FilterField = "power_level"
)

// ParseFilterField maps a wire value to a FilterField. Empty input and
// "All" (any case) mean no filtering.
func ParseFilterField(s string) (FilterField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FieldAll, true
	case "access_type":
		return FieldAccessType, true
	case "operator":
		return FieldOperator, true
	case "status":
		return FieldStatus, true
	case "connection_type":
		return FieldConnectionType, true
	case "power_level":
		return FieldPowerLevel, true
	default:
		return "", false
	}
}

// SortKey selects the station field used for ordering.
type SortKey string

const (
	SortDistance  SortKey = "distance"
	SortName      SortKey = "name"
	SortOperator  SortKey = "operator"
	SortStatus    SortKey = "status"
	SortNumPoints SortKey = "num_points"
)

// ParseSortKey maps a wire value to a SortKey.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "distance":
		return SortDistance, true
	case "name":
		return SortName, true
	case "operator":
		return SortOperator, true
	case "status":
		return SortStatus, true
	case "num_points":
		return SortNumPoints, true
	default:
		return "", false
	}
}

// Catalog holds the full, ordered result set of one search. It is
// immutable: Filter and Sort return fresh slices sharing the same
// Station pointers and never reorder the catalog itself.
type Catalog struct {
	stations []*Station
}

// NewCatalog creates a catalog over one normalized result set. The
// slice is not copied; callers hand over ownership.
func NewCatalog(stations []*Station) *Catalog {
	return &Catalog{stations: stations}
}

// Len returns the number of stations in the full set.
func (c *Catalog) Len() int {
	return len(c.stations)
}

// All returns the full result set in original provider order.
func (c *Catalog) All() []*Station {
	out := make([]*Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Get returns the station with the given provider ID.
func (c *Catalog) Get(id int64) (*Station, bool) {
	for _, s := range c.stations {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Filter returns the stations matching the field/value pair, preserving
// original relative order. FieldAll or an empty value returns the full
// set. Scalar fields match by equality; connection_type and power_level
// match by set membership.
func (c *Catalog) Filter(field FilterField, value string) []*Station {
	if field == FieldAll || value == "" {
		return c.All()
	}

	out := make([]*Station, 0, len(c.stations))
	for _, s := range c.stations {
		if matchesFilter(s, field, value) {
			out = append(out, s)
		}
	}
	return out
}

func matchesFilter(s *Station, field FilterField, value string) bool {
	switch field {
	case FieldAccessType:
		return s.AccessType == value
	case FieldOperator:
		return s.Operator == value
	case FieldStatus:
		return s.Status == value
	case FieldConnectionType:
		return s.HasConnectionType(value)
	case FieldPowerLevel:
		return s.HasPowerLevel(value)
	default:
		return true
	}
}

// FilterValues returns the sorted distinct values the given field takes
// across the full set. Used to populate filter choices.
func (c *Catalog) FilterValues(field FilterField) []string {
	seen := make(map[string]struct{})
	for _, s := range c.stations {
		switch field {
		case FieldAccessType:
			seen[s.AccessType] = struct{}{}
		case FieldOperator:
			seen[s.Operator] = struct{}{}
		case FieldStatus:
			seen[s.Status] = struct{}{}
		case FieldConnectionType:
			for _, ct := range s.ConnectionTypes {
				seen[ct] = struct{}{}
			}
		case FieldPowerLevel:
			for _, pl := range s.PowerLevels {
				seen[pl] = struct{}{}
			}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Sort returns a new ordering of stations by the given key. The sort is
// stable: equal keys preserve the input's relative order. String keys
// compare case-insensitively. A nil distance sorts after every present
// distance when ascending.
func Sort(stations []*Station, key SortKey, descending bool) []*Station {
	out := make([]*Station, len(stations))
	copy(out, stations)

	less := lessFunc(key)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key SortKey) func(a, b *Station) bool {
	switch key {
	case SortName:
		return func(a, b *Station) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortOperator:
		return func(a, b *Station) bool {
			return strings.ToLower(a.Operator) < strings.ToLower(b.Operator)
		}
	case SortStatus:
		return func(a, b *Station) bool {
			return strings.ToLower(a.Status) < strings.ToLower(b.Status)
		}
	case SortNumPoints:
		return func(a, b *Station) bool {
			return a.NumPoints < b.NumPoints
		}
	default: // SortDistance
		return func(a, b *Station) bool {
			return sortableDistance(a) < sortableDistance(b)
		}
	}
}

// sortableDistance treats a missing distance as larger than any present
// value so unknown-distance stations land last when ascending.
func sortableDistance(s *Station) float64 {
	if s.Distance == nil {
		return math.Inf(1)
	}
	return *s.Distance
}
