package nearest

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"golang.org/x/sync/errgroup"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/routing"
)

const (
	// DefaultWorkers bounds concurrent routing requests.
	DefaultWorkers = 4
	// DefaultRouteTimeout bounds each individual routing request. A
	// timed-out candidate is dropped, never retried.
	DefaultRouteTimeout = 10 * time.Second
	// DefaultMaxCandidates caps how many stations get a routing request,
	// taken in straight-line distance order.
	DefaultMaxCandidates = 15
)

// Finder fans out one routing request per candidate station and reduces
// the completions through a Selector. Each Nearest call owns its own
// Selector, so concurrent calls on one Finder never interfere; callers
// that want the streaming supersede behavior drive a Selector directly.
type Finder struct {
	router        routing.Router
	workers       int
	routeTimeout  time.Duration
	maxCandidates int
	log           *slog.Logger
}

func NewFinder(router routing.Router, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Finder{
		router:        router,
		workers:       DefaultWorkers,
		routeTimeout:  DefaultRouteTimeout,
		maxCandidates: DefaultMaxCandidates,
		log:           logger,
	}
}

// SetLimits overrides the worker count, per-request timeout and
// candidate cap. Zero values keep the current setting.
func (f *Finder) SetLimits(workers int, routeTimeout time.Duration, maxCandidates int) {
	if workers > 0 {
		f.workers = workers
	}
	if routeTimeout > 0 {
		f.routeTimeout = routeTimeout
	}
	if maxCandidates > 0 {
		f.maxCandidates = maxCandidates
	}
}

// Nearest routes from the user position to the candidate stations
// concurrently and returns the station with the shortest routed
// distance. Stations whose routing request fails or times out simply
// never reach the selector.
func (f *Finder) Nearest(ctx context.Context, user routing.Point, stations []catalog.StationRecord) (Candidate, bool) {
	selector := NewSelector()
	gen := selector.NewSearch()

	candidates := f.closestByLine(user, stations)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for _, station := range candidates {
		g.Go(func() error {
			routeCtx, cancel := context.WithTimeout(ctx, f.routeTimeout)
			defer cancel()

			to := routing.Point{
				Latitude:  station.Coordinate.Latitude,
				Longitude: station.Coordinate.Longitude,
			}
			route, err := f.router.Route(routeCtx, user, to)
			if err != nil {
				f.log.Debug("routing request dropped", "address", station.Address, "error", err)
				return nil
			}
			selector.Offer(gen, Candidate{Station: station, Route: *route})
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failed candidates are dropped

	return selector.Best(gen)
}

// closestByLine orders stations by straight-line distance to the user
// and keeps the top maxCandidates, so routing requests go to the most
// plausible stations first.
func (f *Finder) closestByLine(user routing.Point, stations []catalog.StationRecord) []catalog.StationRecord {
	sorted := make([]catalog.StationRecord, len(stations))
	copy(sorted, stations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lineDistance(user, sorted[i]) < lineDistance(user, sorted[j])
	})
	if len(sorted) > f.maxCandidates {
		sorted = sorted[:f.maxCandidates]
	}
	return sorted
}

func lineDistance(user routing.Point, station catalog.StationRecord) float64 {
	return gpx.Distance2D(user.Latitude, user.Longitude,
		station.Coordinate.Latitude, station.Coordinate.Longitude, true)
}
