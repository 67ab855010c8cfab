// Package models provides request and response models for the
// ChargeSpot API.
package models

import (
	"time"

	"github.com/chargespot/chargespot/internal/station"
)

// SearchRequest is the body of POST /v1/stations:search.
type SearchRequest struct {
	// Latitude and Longitude of the search center, WGS84 decimal degrees.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// RadiusKm is the search radius in kilometers.
	RadiusKm float64 `json:"radiusKm"`

	// MaxResults caps the result count (optional, default 200).
	MaxResults int `json:"maxResults,omitempty"`

	// APIKey optionally overrides the server-configured upstream key.
	APIKey string `json:"apiKey,omitempty"`
}

// SearchResponse is returned by search and result-set reads.
type SearchResponse struct {
	Stations []Station `json:"stations"`
	// Shown is the number of stations after filtering.
	Shown int `json:"shown"`
	// Total is the size of the full result set.
	Total     int       `json:"total"`
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Station is the wire form of one normalized station.
type Station struct {
	ID                 int64        `json:"id"`
	Latitude           float64      `json:"latitude"`
	Longitude          float64      `json:"longitude"`
	Name               string       `json:"name"`
	Address            string       `json:"address"`
	Operator           string       `json:"operator"`
	Status             string       `json:"status"`
	AccessType         string       `json:"accessType"`
	VerificationStatus string       `json:"verificationStatus"`
	DistanceKm         *float64     `json:"distanceKm,omitempty"`
	NumPoints          int          `json:"numPoints"`
	Cost               string       `json:"cost,omitempty"`
	Phone              string       `json:"phone,omitempty"`
	Email              string       `json:"email,omitempty"`
	URL                string       `json:"url,omitempty"`
	Comments           string       `json:"comments,omitempty"`
	DateCreated        string       `json:"dateCreated,omitempty"`
	DateLastVerified   string       `json:"dateLastVerified,omitempty"`
	Connections        []Connection `json:"connections,omitempty"`
	ConnectionTypes    []string     `json:"connectionTypes,omitempty"`
	PowerLevels        []string     `json:"powerLevels,omitempty"`
}

// Connection is the wire form of one charging connector.
type Connection struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	PowerKW     *float64 `json:"powerKw,omitempty"`
	CurrentType string   `json:"currentType"`
	Quantity    int      `json:"quantity"`
	Status      string   `json:"status"`
	Comments    string   `json:"comments,omitempty"`
}

// FilterValuesResponse lists the distinct values a filter field takes
// in the current result set.
type FilterValuesResponse struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// ExportRequest is the body of POST /v1/stations:export.
type ExportRequest struct {
	// StationIDs selects a subset of the current result set, in the
	// requested order. Empty means all current stations.
	StationIDs []int64 `json:"stationIds,omitempty"`
}

// FromStation converts a domain station to its wire form.
func FromStation(s *station.Station, includeConnections bool) Station {
	out := Station{
		ID:                 s.ID,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		Name:               s.Name,
		Address:            s.Address,
		Operator:           s.Operator,
		Status:             s.Status,
		AccessType:         s.AccessType,
		VerificationStatus: s.VerificationStatus,
		DistanceKm:         s.Distance,
		NumPoints:          s.NumPoints,
		Cost:               s.Cost,
		Phone:              s.Phone,
		Email:              s.Email,
		URL:                s.URL,
		Comments:           s.Comments,
		DateCreated:        s.DateCreated,
		DateLastVerified:   s.DateLastVerified,
		ConnectionTypes:    s.ConnectionTypes,
		PowerLevels:        s.PowerLevels,
	}

	if includeConnections {
		out.Connections = make([]Connection, 0, len(s.Connections))
		for _, c := range s.Connections {
			out.Connections = append(out.Connections, Connection{
				ID:          c.ID,
				Type:        c.Type,
				Level:       c.Level,
				PowerKW:     c.PowerKW,
				CurrentType: c.CurrentType,
				Quantity:    c.Quantity,
				Status:      c.Status,
				Comments:    c.Comments,
			})
		}
	}

	return out
}

// FromStations converts a station list without connection detail.
func FromStations(stations []*station.Station) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		out = append(out, FromStation(s, false))
	}
	return out
}

// HealthStatus represents the health status of the service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Health is the liveness/readiness response.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ProviderStatus reports one upstream provider's health.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *time.Time   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *time.Time   `json:"lastFailureAt,omitempty"`
	LastError     string       `json:"lastError,omitempty"`
}

// SystemStatus is the ops status response.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      time.Time        `json:"time"`
	Searching bool             `json:"searching"`
	Providers []ProviderStatus `json:"providers"`
}
