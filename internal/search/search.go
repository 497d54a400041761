// Package search runs one station search: resolve the user's city,
// fetch that city's station records and build the catalog. Each search
// yields an explicit Session value; a new search supersedes the previous
// one wholesale.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/pkg/api"
)

const (
	cacheExpiry  = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// CityResolver resolves a coordinate to a city name.
type CityResolver interface {
	CityAt(ctx context.Context, lat, lon float64) (string, error)
}

// RecordsFetcher fetches the raw station records for a city.
type RecordsFetcher interface {
	FetchCity(ctx context.Context, city string) (*api.SearchResponse, error)
}

// SearchLogger records where searches happen. Logging failures never
// fail a search.
type SearchLogger interface {
	LogSearch(ctx context.Context, lat, lng float64) error
}

// Session is the result of one search. It owns the catalog for its
// lifetime; the next search replaces it entirely.
type Session struct {
	City     string
	Location catalog.Coordinate
	Catalog  *catalog.Catalog
}

// Searcher orchestrates searches. City catalogs are cached briefly so a
// user panning around the same town does not refetch the dataset.
type Searcher struct {
	geocoder CityResolver
	fuelAPI  RecordsFetcher
	history  SearchLogger
	cache    *cache.Cache
	log      *slog.Logger
}

// New creates a Searcher. history may be nil to disable search logging.
func New(geocoder CityResolver, fuelAPI RecordsFetcher, history SearchLogger, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Searcher{
		geocoder: geocoder,
		fuelAPI:  fuelAPI,
		history:  history,
		cache:    cache.New(cacheExpiry, cacheCleanup),
		log:      logger,
	}
}

// Search resolves the city at the user's location and loads its station
// catalog.
func (s *Searcher) Search(ctx context.Context, location catalog.Coordinate) (*Session, error) {
	city, err := s.geocoder.CityAt(ctx, location.Latitude, location.Longitude)
	if err != nil {
		return nil, fmt.Errorf("error resolving user city: %w", err)
	}
	s.log.Debug("user city resolved", "city", city)
	return s.SearchCity(ctx, city, location)
}

// SearchCity loads the station catalog for a known city. A transport
// failure is fatal to the search; individual bad records are dropped
// while building the catalog.
func (s *Searcher) SearchCity(ctx context.Context, city string, location catalog.Coordinate) (*Session, error) {
	if s.history != nil {
		if err := s.history.LogSearch(ctx, location.Latitude, location.Longitude); err != nil {
			s.log.Error("failed to log search location", "error", err)
		}
	}

	cacheKey := "city_" + catalog.LookupKey(city)
	if cached, found := s.cache.Get(cacheKey); found {
		s.log.Debug("using cached catalog", "key", cacheKey)
		return &Session{City: city, Location: location, Catalog: cached.(*catalog.Catalog)}, nil
	}

	resp, err := s.fuelAPI.FetchCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("error fetching stations for %s: %w", city, err)
	}

	records := resp.AllRecords()
	cat := catalog.Build(records, s.log)
	s.log.Info("catalog built",
		"city", city,
		"records", len(records),
		"stations", cat.Len(),
		"dropped", cat.Dropped())

	s.cache.Set(cacheKey, cat, cache.DefaultExpiration)
	return &Session{City: city, Location: location, Catalog: cat}, nil
}
