package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/geo"
	"github.com/chargespot/chargespot/internal/layer"
	"github.com/chargespot/chargespot/internal/report"
	"github.com/chargespot/chargespot/internal/station"
)

// StationHandler handles station search, result-set views, map layer
// generation, and PDF export.
type StationHandler struct {
	service  *station.Service
	layers   *layer.Builder
	renderer *report.Renderer
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(service *station.Service, layers *layer.Builder, renderer *report.Renderer) *StationHandler {
	return &StationHandler{
		service:  service,
		layers:   layers,
		renderer: renderer,
	}
}

// Search handles POST /v1/stations:search - run one search and replace
// the current result set.
func (h *StationHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	view, err := h.service.Search(r.Context(), station.SearchRequest{
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		RadiusKm:   input.RadiusKm,
		MaxResults: input.MaxResults,
		APIKey:     input.APIKey,
	})
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, h.toSearchResponse(view))
}

// List handles GET /v1/stations - the current result set, optionally
// filtered and sorted.
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, sortOpts, ok := h.parseViewOptions(w, r)
	if !ok {
		return
	}

	view, err := h.service.Results(filter, sortOpts)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, h.toSearchResponse(view))
}

// Get handles GET /v1/stations/{stationId} - one station with full
// connection detail.
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "stationId"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "stationId must be an integer", nil)
		return
	}

	st, err := h.service.Get(id)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.FromStation(st, true))
}

// FilterValues handles GET /v1/stations/filters?field= - distinct
// values for one filter field.
func (h *StationHandler) FilterValues(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("field")
	field, ok := station.ParseFilterField(raw)
	if !ok || field == station.FieldAll {
		response.BadRequest(w, r, "unknown filter field", []models.FieldError{
			{Field: "field", Message: "one of access_type, operator, status, connection_type, power_level"},
		})
		return
	}

	values, err := h.service.FilterValues(field)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.FilterValuesResponse{
		Field:  string(field),
		Values: values,
	})
}

// Layer handles GET /v1/stations/layer - the current result set as a
// GeoJSON FeatureCollection, optionally reprojected and with the
// search-area polygon appended.
func (h *StationHandler) Layer(w http.ResponseWriter, r *http.Request) {
	filter, sortOpts, ok := h.parseViewOptions(w, r)
	if !ok {
		return
	}

	opts := layer.Options{}
	switch r.URL.Query().Get("crs") {
	case "", "4326":
		opts.TargetCRS = geo.CRSWGS84
	case "3857":
		opts.TargetCRS = geo.CRSWebMercator
	default:
		response.BadRequest(w, r, "unsupported crs", []models.FieldError{
			{Field: "crs", Message: "one of 4326, 3857"},
		})
		return
	}

	view, err := h.service.Results(filter, sortOpts)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	collection := h.layers.StationCollection(view.Stations, opts)
	if r.URL.Query().Get("area") == "true" {
		area := h.layers.SearchArea(view.Center.Latitude, view.Center.Longitude, view.Center.RadiusKm, opts)
		collection.Features = append(collection.Features, area)
	}

	w.Header().Set("Content-Type", "application/geo+json")
	response.JSON(w, r, http.StatusOK, collection)
}

// Export handles POST /v1/stations:export - render selected stations as
// a PDF report.
func (h *StationHandler) Export(w http.ResponseWriter, r *http.Request) {
	var input models.ExportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.BadRequest(w, r, "invalid JSON body", nil)
			return
		}
	}

	var stations []*station.Station
	if len(input.StationIDs) == 0 {
		view, err := h.service.Results(station.FilterOptions{Field: station.FieldAll}, station.SortOptions{})
		if err != nil {
			h.writeSearchError(w, r, err)
			return
		}
		stations = view.Stations
	} else {
		stations = make([]*station.Station, 0, len(input.StationIDs))
		for _, id := range input.StationIDs {
			st, err := h.service.Get(id)
			if err != nil {
				if errors.Is(err, station.ErrNotFound) {
					response.NotFound(w, r, fmt.Sprintf("station %d is not in the current result set", id))
					return
				}
				h.writeSearchError(w, r, err)
				return
			}
			stations = append(stations, st)
		}
	}

	// Render into memory first so a mid-document failure does not leave
	// a half-written response.
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, stations); err != nil {
		response.InternalError(w, r, "failed to render station report")
		return
	}

	filename := "charging_stations_" + time.Now().Format("20060102_150405") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Clear handles DELETE /v1/stations - discard the current result set.
func (h *StationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *StationHandler) parseViewOptions(w http.ResponseWriter, r *http.Request) (station.FilterOptions, station.SortOptions, bool) {
	q := r.URL.Query()

	field, ok := station.ParseFilterField(q.Get("filter"))
	if !ok {
		response.BadRequest(w, r, "unknown filter field", []models.FieldError{
			{Field: "filter", Message: "one of All, access_type, operator, status, connection_type, power_level"},
		})
		return station.FilterOptions{}, station.SortOptions{}, false
	}

	sortOpts := station.SortOptions{}
	if raw := q.Get("sort"); raw != "" {
		key, ok := station.ParseSortKey(raw)
		if !ok {
			response.BadRequest(w, r, "unknown sort key", []models.FieldError{
				{Field: "sort", Message: "one of distance, name, operator, status, num_points"},
			})
			return station.FilterOptions{}, station.SortOptions{}, false
		}
		sortOpts.Key = key
		sortOpts.Descending = q.Get("desc") == "true"
	}

	return station.FilterOptions{Field: field, Value: q.Get("value")}, sortOpts, true
}

func (h *StationHandler) toSearchResponse(view *station.ResultView) models.SearchResponse {
	return models.SearchResponse{
		Stations:  models.FromStations(view.Stations),
		Shown:     len(view.Stations),
		Total:     view.Total,
		Provider:  h.service.ProviderName(),
		FetchedAt: view.FetchedAt,
	}
}

// writeSearchError maps domain errors to problem responses.
func (h *StationHandler) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, station.ErrSearchInProgress):
		response.Conflict(w, r, "a search is already in progress; retry when it completes")
	case errors.Is(err, station.ErrInvalidCoordinates):
		response.BadRequest(w, r, "latitude must be in [-90, 90] and longitude in [-180, 180]", nil)
	case errors.Is(err, station.ErrInvalidRadius):
		response.BadRequest(w, r, "radiusKm must be positive", nil)
	case errors.Is(err, station.ErrNoResults):
		response.NotFound(w, r, "no search results loaded; run a search first")
	case errors.Is(err, station.ErrNotFound):
		response.NotFound(w, r, "station not found in current results")
	case errors.Is(err, station.ErrAccessForbidden),
		errors.Is(err, station.ErrProviderUnavailable),
		errors.Is(err, station.ErrMalformedResponse):
		response.BadGateway(w, r, err.Error())
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
