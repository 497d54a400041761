// Package server exposes the station search over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/geocode"
	"github.com/MattGuil/AppStation/internal/history"
	"github.com/MattGuil/AppStation/internal/nearest"
	"github.com/MattGuil/AppStation/internal/routing"
	"github.com/MattGuil/AppStation/internal/search"
	"github.com/MattGuil/AppStation/pkg/api"
)

const rateLimitPerMinute = 20

// Server serves the station search API.
type Server struct {
	server   *http.Server
	searcher *search.Searcher
	finder   *nearest.Finder
	history  *history.Storage
	metrics  *Metrics
	logger   *httplog.Logger
}

// New creates a Server. history may be nil; /popular then answers 404.
func New(addr string, searcher *search.Searcher, finder *nearest.Finder, hist *history.Storage, logger *httplog.Logger) *Server {
	s := &Server{
		searcher: searcher,
		finder:   finder,
		history:  hist,
		metrics:  NewMetrics(),
		logger:   logger,
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(rateLimitPerMinute, time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/stations", s.handleStations)
	r.Get("/nearest", s.handleNearest)
	r.Get("/popular", s.handlePopular)

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

type stationsResponse struct {
	City     string                  `json:"city"`
	Stations []catalog.StationRecord `json:"stations"`
	Dropped  int                     `json:"dropped_records"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	location, ok := queryLocation(w, r)
	if !ok {
		return
	}

	start := time.Now()
	session, err := s.searcher.Search(r.Context(), location)
	if err != nil {
		s.metrics.RecordSearch(searchOutcome(err), time.Since(start).Seconds())
		writeSearchError(w, err)
		return
	}
	s.metrics.RecordSearch("ok", time.Since(start).Seconds())
	s.metrics.StationsReturned.Add(float64(session.Catalog.Len()))
	s.metrics.RecordsDropped.Add(float64(session.Catalog.Dropped()))

	writeJSON(w, stationsResponse{
		City:     session.City,
		Stations: session.Catalog.All(),
		Dropped:  session.Catalog.Dropped(),
	})
}

type nearestResponse struct {
	City    string            `json:"city"`
	Nearest nearest.Candidate `json:"nearest"`
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	location, ok := queryLocation(w, r)
	if !ok {
		return
	}

	start := time.Now()
	session, err := s.searcher.Search(r.Context(), location)
	if err != nil {
		s.metrics.RecordSearch(searchOutcome(err), time.Since(start).Seconds())
		writeSearchError(w, err)
		return
	}
	s.metrics.RecordSearch("ok", time.Since(start).Seconds())

	user := routing.Point{Latitude: location.Latitude, Longitude: location.Longitude}
	best, found := s.finder.Nearest(r.Context(), user, session.Catalog.All())
	if !found {
		http.Error(w, "no reachable station", http.StatusNotFound)
		return
	}

	writeJSON(w, nearestResponse{City: session.City, Nearest: best})
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "search history disabled", http.StatusNotFound)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	popular, err := s.history.PopularLocations(r.Context(), limit)
	if err != nil {
		s.logger.Error("error loading popular locations", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, popular)
}

func queryLocation(w http.ResponseWriter, r *http.Request) (catalog.Coordinate, bool) {
	query := r.URL.Query()
	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(query.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		http.Error(w, "lat and lng query parameters are required", http.StatusBadRequest)
		return catalog.Coordinate{}, false
	}
	return catalog.Coordinate{Latitude: lat, Longitude: lng}, true
}

func writeSearchError(w http.ResponseWriter, err error) {
	var transportErr *api.TransportError
	switch {
	case errors.Is(err, geocode.ErrNoLocality):
		http.Error(w, "could not resolve a city for this location", http.StatusNotFound)
	case errors.As(err, &transportErr):
		http.Error(w, "fuel price dataset unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "search failed", http.StatusInternalServerError)
	}
}

func searchOutcome(err error) string {
	var transportErr *api.TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, geocode.ErrNoLocality):
		return "no_city"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "error"
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
