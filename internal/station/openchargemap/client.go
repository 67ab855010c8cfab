// Package openchargemap provides a client for the OpenChargeMap POI API.
package openchargemap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/station"
)

const (
	// ProviderName identifies this station directory provider.
	ProviderName = "openchargemap"

	// DefaultBaseURL is the OpenChargeMap API base URL.
	DefaultBaseURL = "https://api.openchargemap.io/v3"

	// DefaultTimeout bounds one search request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is applied when a request does not cap results.
	DefaultMaxResults = 200

	userAgent = "chargespot/1.0"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenChargeMap client.
type ClientConfig struct {
	// APIKey is attached as X-API-Key when non-empty. The API works
	// without a key but rate-limits aggressively.
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a
	// circuit-breaker-guarded client with no automatic retries is used:
	// a transient search failure surfaces to the caller instead of
	// being silently retried.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenChargeMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new OpenChargeMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.MaxRetries = 0
		client := resilience.NewClient(clientCfg)
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, client)
		}
		httpClient = client
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search queries the POI endpoint and returns normalized stations.
func (c *Client) Search(ctx context.Context, req station.SearchRequest) ([]*station.Station, error) {
	if err := req.Validate(); err != nil {
		return nil, &station.Error{
			Provider: ProviderName,
			Code:     "INVALID_REQUEST",
			Message:  "invalid search parameters",
			Err:      err,
		}
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("output", "json")
	params.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	params.Set("distance", strconv.FormatFloat(req.RadiusKm, 'f', -1, 64))
	params.Set("distanceunit", "km")
	params.Set("maxresults", strconv.Itoa(maxResults))

	reqURL := c.baseURL + "/poi?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey != "" {
		httpReq.Header.Set("X-API-Key", apiKey)
	}

	c.logger.Info().
		Float64("latitude", req.Latitude).
		Float64("longitude", req.Longitude).
		Float64("radius_km", req.RadiusKm).
		Int("max_results", maxResults).
		Bool("api_key_set", apiKey != "").
		Msg("requesting stations from OpenChargeMap")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure(err)
		return nil, &station.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach station directory",
			Err:      station.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure(err)
		return nil, &station.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read station directory response",
			Err:      station.ErrProviderUnavailable,
		}
	}

	c.logger.Info().
		Int("status", resp.StatusCode).
		Int("body_bytes", len(respBody)).
		Msg("OpenChargeMap response received")

	if resp.StatusCode != http.StatusOK {
		err := c.handleErrorResponse(resp.StatusCode, respBody)
		c.recordFailure(err)
		return nil, err
	}

	// Elements decode individually so one malformed item never aborts
	// the batch.
	var rawItems []json.RawMessage
	if err := json.Unmarshal(respBody, &rawItems); err != nil {
		parseErr := &station.Error{
			Provider: ProviderName,
			Code:     "PARSE_FAILED",
			Message:  "failed to parse station directory response",
			Err:      station.ErrMalformedResponse,
		}
		c.recordFailure(parseErr)
		return nil, parseErr
	}

	stations := normalizeAll(rawItems, c.logger)

	c.recordSuccess()
	c.logger.Info().
		Int("raw_count", len(rawItems)).
		Int("station_count", len(stations)).
		Msg("normalized station results")

	return stations, nil
}

// handleErrorResponse maps non-200 responses to domain errors. 403 is
// distinguished regardless of body content.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	if statusCode == http.StatusForbidden {
		return &station.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message: "access forbidden (403): possible rate limiting (try again later), " +
				"missing API key, or geographic restriction; response: " + truncateBody(body),
			Err: station.ErrAccessForbidden,
		}
	}

	return &station.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  fmt.Sprintf("station directory returned status %d", statusCode),
		Err:      station.ErrProviderUnavailable,
	}
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(ProviderName)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(ProviderName, err)
	}
}

// truncateBody keeps error messages readable when the upstream returns
// an HTML error page.
func truncateBody(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}
