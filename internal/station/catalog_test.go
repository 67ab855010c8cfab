package station_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargespot/chargespot/internal/station"
)

func km(v float64) *float64 { return &v }

func testStations() []*station.Station {
	return []*station.Station{
		{
			ID: 1, Name: "Alpha Charging", Operator: "GreenPower",
			Status: "Operational", AccessType: "Public",
			Distance: km(2.5), NumPoints: 4,
			ConnectionTypes: []string{"Type 2", "CCS"},
			PowerLevels:     []string{"Level 2"},
		},
		{
			ID: 2, Name: "beta station", Operator: "VoltCo",
			Status: "Out of Service", AccessType: "Public",
			Distance: km(0.8), NumPoints: 2,
			ConnectionTypes: []string{"CHAdeMO"},
			PowerLevels:     []string{"Level 3"},
		},
		{
			ID: 3, Name: "Gamma Hub", Operator: "GreenPower",
			Status: "Operational", AccessType: "Private",
			NumPoints: 8,
			ConnectionTypes: []string{"Type 2"},
		},
	}
}

func TestCatalog_Filter_All(t *testing.T) {
	c := station.NewCatalog(testStations())

	got := c.Filter(station.FieldAll, "ignored")
	assert.Len(t, got, 3)

	// Empty value never filters, whatever the field
	got = c.Filter(station.FieldOperator, "")
	assert.Len(t, got, 3)
}

func TestCatalog_Filter_Scalar(t *testing.T) {
	c := station.NewCatalog(testStations())

	got := c.Filter(station.FieldOperator, "GreenPower")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	got = c.Filter(station.FieldStatus, "Out of Service")
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got = c.Filter(station.FieldAccessType, "Private")
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	// Equality, not substring
	got = c.Filter(station.FieldOperator, "Green")
	assert.Empty(t, got)
}

func TestCatalog_Filter_Membership(t *testing.T) {
	c := station.NewCatalog(testStations())

	got := c.Filter(station.FieldConnectionType, "Type 2")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	got = c.Filter(station.FieldPowerLevel, "Level 3")
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestCatalog_FilterValues(t *testing.T) {
	c := station.NewCatalog(testStations())

	assert.Equal(t, []string{"GreenPower", "VoltCo"}, c.FilterValues(station.FieldOperator))
	assert.Equal(t, []string{"Operational", "Out of Service"}, c.FilterValues(station.FieldStatus))
	assert.Equal(t, []string{"CCS", "CHAdeMO", "Type 2"}, c.FilterValues(station.FieldConnectionType))
	assert.Equal(t, []string{"Level 2", "Level 3"}, c.FilterValues(station.FieldPowerLevel))
}

func TestCatalog_Get(t *testing.T) {
	c := station.NewCatalog(testStations())

	st, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "beta station", st.Name)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestSort_Distance_MissingLast(t *testing.T) {
	sorted := station.Sort(testStations(), station.SortDistance, false)

	require.Len(t, sorted, 3)
	assert.Equal(t, int64(2), sorted[0].ID) // 0.8 km
	assert.Equal(t, int64(1), sorted[1].ID) // 2.5 km
	assert.Equal(t, int64(3), sorted[2].ID) // no distance, always last ascending
}

func TestSort_Name_CaseInsensitive(t *testing.T) {
	sorted := station.Sort(testStations(), station.SortName, false)

	assert.Equal(t, "Alpha Charging", sorted[0].Name)
	assert.Equal(t, "beta station", sorted[1].Name)
	assert.Equal(t, "Gamma Hub", sorted[2].Name)
}

func TestSort_Descending(t *testing.T) {
	sorted := station.Sort(testStations(), station.SortNumPoints, true)

	assert.Equal(t, 8, sorted[0].NumPoints)
	assert.Equal(t, 4, sorted[1].NumPoints)
	assert.Equal(t, 2, sorted[2].NumPoints)
}

func TestSort_Stable(t *testing.T) {
	// Two GreenPower stations: sorting by operator must keep their
	// original relative order.
	sorted := station.Sort(testStations(), station.SortOperator, false)

	require.Len(t, sorted, 3)
	assert.Equal(t, int64(1), sorted[0].ID)
	assert.Equal(t, int64(3), sorted[1].ID)
	assert.Equal(t, int64(2), sorted[2].ID)
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	input := testStations()
	_ = station.Sort(input, station.SortDistance, false)

	assert.Equal(t, int64(1), input[0].ID)
	assert.Equal(t, int64(2), input[1].ID)
	assert.Equal(t, int64(3), input[2].ID)
}

func TestParseFilterField(t *testing.T) {
	field, ok := station.ParseFilterField("")
	require.True(t, ok)
	assert.Equal(t, station.FieldAll, field)

	field, ok = station.ParseFilterField("ALL")
	require.True(t, ok)
	assert.Equal(t, station.FieldAll, field)

	field, ok = station.ParseFilterField("connection_type")
	require.True(t, ok)
	assert.Equal(t, station.FieldConnectionType, field)

	_, ok = station.ParseFilterField("bogus")
	assert.False(t, ok)
}

func TestParseSortKey(t *testing.T) {
	key, ok := station.ParseSortKey("num_points")
	require.True(t, ok)
	assert.Equal(t, station.SortNumPoints, key)

	_, ok = station.ParseSortKey("bogus")
	assert.False(t, ok)
}
