package station

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the search service.
type ServiceConfig struct {
	// Provider is the station directory provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service owns the result set of the current search session. It holds at
// most one catalog at a time: a successful search replaces the set
// wholesale, a failed search keeps the previous one. Exactly one search
// may be in flight; a concurrent Search is rejected with
// ErrSearchInProgress rather than queued.
type Service struct {
	provider Provider
	logger   zerolog.Logger

	mu        sync.RWMutex
	searching bool
	catalog   *Catalog
	request   SearchRequest
	fetchedAt time.Time
}

// NewService creates a new search service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// FilterOptions selects a subset of the current result set.
type FilterOptions struct {
	Field FilterField
	Value string
}

// SortOptions orders a result view.
type SortOptions struct {
	Key        SortKey
	Descending bool
}

// ResultView is a derived, ordered view over the current result set.
type ResultView struct {
	Stations []*Station
	// Total is the size of the full set; len(Stations) may be smaller
	// after filtering.
	Total     int
	Center    SearchRequest
	FetchedAt time.Time
}

// Search runs one provider search and replaces the current result set
// on success. Returns ErrSearchInProgress when another search has not
// finished yet.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*ResultView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.searching {
		s.mu.Unlock()
		return nil, ErrSearchInProgress
	}
	s.searching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.searching = false
		s.mu.Unlock()
	}()

	s.logger.Info().
		Float64("latitude", req.Latitude).
		Float64("longitude", req.Longitude).
		Float64("radius_km", req.RadiusKm).
		Int("max_results", req.MaxResults).
		Str("provider", s.provider.Name()).
		Msg("starting station search")

	stations, err := s.provider.Search(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", s.provider.Name()).
			Msg("station search failed")
		return nil, err
	}

	now := time.Now()

	s.mu.Lock()
	s.catalog = NewCatalog(stations)
	s.request = req
	s.fetchedAt = now
	s.mu.Unlock()

	s.logger.Info().
		Int("station_count", len(stations)).
		Msg("station search completed")

	return &ResultView{
		Stations:  stations,
		Total:     len(stations),
		Center:    req,
		FetchedAt: now,
	}, nil
}

// Results returns a derived view of the current set: filter first, then
// sort. The underlying records are shared, never copied.
func (s *Service) Results(filter FilterOptions, sortOpts SortOptions) (*ResultView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, ErrNoResults
	}

	stations := s.catalog.Filter(filter.Field, filter.Value)
	if sortOpts.Key != "" {
		stations = Sort(stations, sortOpts.Key, sortOpts.Descending)
	}

	return &ResultView{
		Stations:  stations,
		Total:     s.catalog.Len(),
		Center:    s.request,
		FetchedAt: s.fetchedAt,
	}, nil
}

// Get returns one station from the current set by provider ID.
func (s *Service) Get(id int64) (*Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, ErrNoResults
	}
	st, ok := s.catalog.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

// FilterValues returns the distinct values of a field across the
// current set.
func (s *Service) FilterValues(field FilterField) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, ErrNoResults
	}
	return s.catalog.FilterValues(field), nil
}

// Clear discards the current result set.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = nil
	s.request = SearchRequest{}
	s.fetchedAt = time.Time{}
}

// HasResults reports whether a result set is currently loaded.
func (s *Service) HasResults() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog != nil
}

// Searching reports whether a search is currently in flight.
func (s *Service) Searching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searching
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
