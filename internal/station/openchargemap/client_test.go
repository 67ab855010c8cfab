package openchargemap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/internal/station/openchargemap"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func testClient(serverURL string) *openchargemap.Client {
	return openchargemap.NewClient(openchargemap.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("ocm-test")),
		Logger:     zerolog.Nop(),
	})
}

func searchRequest() station.SearchRequest {
	return station.SearchRequest{Latitude: 52.37, Longitude: 4.89, RadiusKm: 5, MaxResults: 50}
}

func TestClient_Name(t *testing.T) {
	client := openchargemap.NewClient(openchargemap.ClientConfig{Logger: zerolog.Nop()})
	assert.Equal(t, "openchargemap", client.Name())
}

func TestClient_Search(t *testing.T) {
	fixture := loadFixture(t, "poi_response.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/poi", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("output"))
		assert.Equal(t, "52.37", q.Get("latitude"))
		assert.Equal(t, "4.89", q.Get("longitude"))
		assert.Equal(t, "5", q.Get("distance"))
		assert.Equal(t, "km", q.Get("distanceunit"))
		assert.Equal(t, "50", q.Get("maxresults"))

		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture)
	}))
	defer server.Close()

	stations, err := testClient(server.URL).Search(context.Background(), searchRequest())
	require.NoError(t, err)

	// Fixture has 3 items; the one without coordinates is dropped
	require.Len(t, stations, 2)

	first := stations[0]
	assert.Equal(t, int64(100001), first.ID)
	assert.Equal(t, "Stationsplein Charging Hub", first.Name)
	assert.Equal(t, "Stationsplein 9, Amsterdam, Noord-Holland, 1012 AB, Netherlands", first.Address)
	assert.Equal(t, "Allego", first.Operator)
	assert.Equal(t, "Operational", first.Status)
	assert.Equal(t, "Public", first.AccessType)
	assert.Equal(t, 4, first.NumPoints)
	require.NotNil(t, first.Distance)
	assert.InDelta(t, 0.42, *first.Distance, 0.001)
	assert.Equal(t, []string{"CCS (Type 2)", "Type 2 (Socket Only)"}, first.ConnectionTypes)
	require.Len(t, first.Connections, 2)
	require.NotNil(t, first.Connections[1].PowerKW)
	assert.InDelta(t, 150, *first.Connections[1].PowerKW, 0.001)

	// Bare record gets defaults rather than being excluded
	second := stations[1]
	assert.Equal(t, int64(100002), second.ID)
	assert.Equal(t, "Unknown Station", second.Name)
	assert.Equal(t, "Unknown Address", second.Address)
	assert.Equal(t, "Unknown", second.Operator)
	assert.Equal(t, "Unknown", second.Status)
	assert.Empty(t, second.Connections)
}

func TestClient_Search_RequestKeyOverridesClientKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "per-request-key", r.Header.Get("X-API-Key"))
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	req := searchRequest()
	req.APIKey = "per-request-key"

	stations, err := testClient(server.URL).Search(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestClient_Search_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Search(context.Background(), searchRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, station.ErrAccessForbidden)

	var provErr *station.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "FORBIDDEN", provErr.Code)
	assert.Contains(t, provErr.Message, "rate limiting")
	assert.Contains(t, provErr.Message, "blocked")
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Search(context.Background(), searchRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, station.ErrProviderUnavailable)

	var provErr *station.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "HTTP_503", provErr.Code)
}

func TestClient_Search_TruncatedBody(t *testing.T) {
	// Declare a bigger body than is sent, then drop the connection so
	// the body read fails mid-stream.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[{"))

		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	_, err := testClient(server.URL).Search(context.Background(), searchRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, station.ErrProviderUnavailable)

	var provErr *station.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "READ_FAILED", provErr.Code)
}

func TestClient_Search_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Search(context.Background(), searchRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, station.ErrMalformedResponse)
}

func TestClient_Search_InvalidRequest(t *testing.T) {
	client := openchargemap.NewClient(openchargemap.ClientConfig{Logger: zerolog.Nop()})

	_, err := client.Search(context.Background(), station.SearchRequest{Latitude: 200, RadiusKm: 5})
	assert.ErrorIs(t, err, station.ErrInvalidCoordinates)

	_, err = client.Search(context.Background(), station.SearchRequest{Latitude: 52, Longitude: 4, RadiusKm: -1})
	assert.ErrorIs(t, err, station.ErrInvalidRadius)
}

func TestClient_Search_TracksRegistryHealth(t *testing.T) {
	registry := resilience.NewRegistry()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := openchargemap.NewClient(openchargemap.ClientConfig{
		BaseURL:  server.URL,
		Registry: registry,
		Logger:   zerolog.Nop(),
	})

	_, err := client.Search(context.Background(), searchRequest())
	require.NoError(t, err)

	health := registry.GetHealth("openchargemap")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
}
