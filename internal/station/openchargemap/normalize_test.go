package openchargemap

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAll_SkipsMalformedItems(t *testing.T) {
	rawItems := []json.RawMessage{
		json.RawMessage(`{"ID": 1, "AddressInfo": {"Latitude": 48.8, "Longitude": 2.3}}`),
		json.RawMessage(`{"ID": "not-a-number"}`),
		json.RawMessage(`{"ID": 2, "AddressInfo": {"Latitude": 48.9, "Longitude": 2.4}}`),
	}

	stations := normalizeAll(rawItems, zerolog.Nop())

	require.Len(t, stations, 2)
	assert.Equal(t, int64(1), stations[0].ID)
	assert.Equal(t, int64(2), stations[1].ID)
}

func TestNormalize_MissingCoordinates(t *testing.T) {
	lat := 48.8

	_, ok := normalize(&poi{ID: 1})
	assert.False(t, ok)

	_, ok = normalize(&poi{ID: 2, AddressInfo: &addressInfo{Latitude: &lat}})
	assert.False(t, ok)
}

func TestNormalize_ConnectionProjections(t *testing.T) {
	raw := json.RawMessage(`{
		"ID": 7,
		"AddressInfo": {"Latitude": 48.8, "Longitude": 2.3, "Title": "X"},
		"Connections": [{"ConnectionType": {"Title": "Type2"}, "PowerKW": 22}]
	}`)

	var item poi
	require.NoError(t, json.Unmarshal(raw, &item))

	st, ok := normalize(&item)
	require.True(t, ok)

	assert.Equal(t, "X", st.Name)
	assert.Equal(t, []string{"Type2"}, st.ConnectionTypes)
	// The connection carries no Level, so the defaulted "Unknown" does
	// not enter the power level set.
	assert.Empty(t, st.PowerLevels)

	require.Len(t, st.Connections, 1)
	conn := st.Connections[0]
	assert.Equal(t, "Type2", conn.Type)
	assert.Equal(t, "Unknown", conn.Level)
	assert.Equal(t, 1, conn.Quantity)
	require.NotNil(t, conn.PowerKW)
	assert.InDelta(t, 22, *conn.PowerKW, 0.001)
}

func TestNormalize_DistinctTitlesDeduplicatedAndSorted(t *testing.T) {
	raw := json.RawMessage(`{
		"ID": 8,
		"AddressInfo": {"Latitude": 48.8, "Longitude": 2.3},
		"Connections": [
			{"ConnectionType": {"Title": "Type2"}, "Level": {"Title": "Level 2"}},
			{"ConnectionType": {"Title": "CCS"}, "Level": {"Title": "Level 3"}},
			{"ConnectionType": {"Title": "Type2"}, "Level": {"Title": "Level 2"}}
		]
	}`)

	var item poi
	require.NoError(t, json.Unmarshal(raw, &item))

	st, ok := normalize(&item)
	require.True(t, ok)

	assert.Equal(t, []string{"CCS", "Type2"}, st.ConnectionTypes)
	assert.Equal(t, []string{"Level 2", "Level 3"}, st.PowerLevels)
}

func TestBuildAddress(t *testing.T) {
	line1 := "Main St 1"
	town := "Springfield"
	country := "USA"

	addr := &addressInfo{
		AddressLine1: &line1,
		Town:         &town,
		Country:      &titledRef{Title: &country},
	}
	assert.Equal(t, "Main St 1, Springfield, USA", buildAddress(addr))

	assert.Equal(t, "Unknown Address", buildAddress(&addressInfo{}))
}
