// Package station provides the charging station domain model and the
// in-memory catalog that backs one search result set.
package station

import (
	"context"
	"errors"
)

// Sentinel errors for station search operations.
var (
	// ErrProviderUnavailable indicates a transport failure or a non-2xx
	// response from the station directory provider.
	ErrProviderUnavailable = errors.New("station provider unavailable")
	// ErrAccessForbidden indicates the provider rejected the request with
	// HTTP 403 (rate limit, missing API key, or geographic restriction).
	ErrAccessForbidden = errors.New("station provider access forbidden")
	// ErrMalformedResponse indicates the provider response body could not
	// be decoded.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrInvalidCoordinates indicates the search coordinates are out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidRadius indicates a non-positive search radius.
	ErrInvalidRadius = errors.New("search radius must be positive")
	// ErrSearchInProgress indicates another search is already in flight.
	ErrSearchInProgress = errors.New("a search is already in progress")
	// ErrNoResults indicates no result set is currently loaded.
	ErrNoResults = errors.New("no search results loaded")
	// ErrNotFound indicates the requested station is not in the current set.
	ErrNotFound = errors.New("station not found in current results")
)

// Unknown is the sentinel used when an optional descriptive field is
// absent in the upstream payload.
const Unknown = "Unknown"

// Provider defines the interface for charging station directories.
type Provider interface {
	// Search returns normalized stations around a center point.
	Search(ctx context.Context, req SearchRequest) ([]*Station, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// SearchRequest describes one station search.
type SearchRequest struct {
	// Latitude and Longitude of the search center, WGS84 decimal degrees.
	Latitude  float64
	Longitude float64
	// RadiusKm is the search radius in kilometers. Must be positive.
	RadiusKm float64
	// MaxResults caps the number of results (default: 200, server may
	// cap further).
	MaxResults int
	// APIKey optionally overrides the client-level key for this request.
	APIKey string
}

// Validate checks the request parameters.
func (r SearchRequest) Validate() error {
	if r.Latitude < -90 || r.Latitude > 90 {
		return ErrInvalidCoordinates
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	if r.RadiusKm <= 0 {
		return ErrInvalidRadius
	}
	return nil
}

// Station is one normalized charging location. Records are immutable
// after normalization: the catalog and all derived views share pointers
// and never mutate fields.
type Station struct {
	ID int64

	// Location, WGS84 decimal degrees. Always valid: items lacking
	// coordinates are dropped during normalization.
	Latitude  float64
	Longitude float64

	Name               string
	Address            string
	Operator           string
	Status             string
	AccessType         string
	VerificationStatus string

	// Distance from the search center in km, as reported by the
	// provider. Nil when the provider omitted it.
	Distance  *float64
	NumPoints int

	Cost     string
	Phone    string
	Email    string
	URL      string
	Comments string

	// Opaque provider timestamps, passed through unparsed.
	DateCreated      string
	DateLastVerified string

	Connections []Connection

	// Deduplicated projections of Connections[].Type and
	// Connections[].Level, order-insensitive. Defaulted ("Unknown")
	// entries are excluded.
	ConnectionTypes []string
	PowerLevels     []string
}

// HasConnectionType reports whether t is one of the station's
// deduplicated connection types.
func (s *Station) HasConnectionType(t string) bool {
	for _, ct := range s.ConnectionTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// HasPowerLevel reports whether l is one of the station's deduplicated
// power levels.
func (s *Station) HasPowerLevel(l string) bool {
	for _, pl := range s.PowerLevels {
		if pl == l {
			return true
		}
	}
	return false
}

// Connection is one physical charging connector specification.
type Connection struct {
	ID          int64
	Type        string
	Level       string
	PowerKW     *float64
	CurrentType string
	Quantity    int
	Status      string
	Comments    string
}

// Error provides detailed error information from a station provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Provider-specific error code
	Message  string // Human-readable error message
	Err      error  // Underlying sentinel error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
