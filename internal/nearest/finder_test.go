package nearest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/routing"
)

// routerFunc adapts a function to the routing.Router interface.
type routerFunc func(ctx context.Context, from, to routing.Point) (*routing.Route, error)

func (f routerFunc) Route(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
	return f(ctx, from, to)
}

func station(address string, lat, lon float64) catalog.StationRecord {
	return catalog.StationRecord{
		Address:    address,
		Coordinate: catalog.Coordinate{Latitude: lat, Longitude: lon},
	}
}

func TestFinderPicksShortestRoutedDistance(t *testing.T) {
	// Routed distances deliberately invert the straight-line order: the
	// station furthest as the crow flies is closest by road.
	distances := map[string]float64{
		"NEAR": 5000,
		"MID":  4000,
		"FAR":  900,
	}
	router := routerFunc(func(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
		switch to.Latitude {
		case 48.01:
			return &routing.Route{DistanceMeters: distances["NEAR"]}, nil
		case 48.02:
			return &routing.Route{DistanceMeters: distances["MID"]}, nil
		default:
			return &routing.Route{DistanceMeters: distances["FAR"]}, nil
		}
	})

	f := NewFinder(router, nil)
	user := routing.Point{Latitude: 48.0, Longitude: 2.0}
	stations := []catalog.StationRecord{
		station("NEAR", 48.01, 2.0),
		station("MID", 48.02, 2.0),
		station("FAR", 48.03, 2.0),
	}

	best, ok := f.Nearest(context.Background(), user, stations)
	if !ok {
		t.Fatal("expected a nearest station")
	}
	if best.Station.Address != "FAR" {
		t.Errorf("nearest = %s (%.0f m), want FAR", best.Station.Address, best.Route.DistanceMeters)
	}
}

func TestFinderDropsFailedCandidates(t *testing.T) {
	router := routerFunc(func(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
		if to.Latitude == 48.01 {
			return nil, errors.New("no route")
		}
		return &routing.Route{DistanceMeters: 1500}, nil
	})

	f := NewFinder(router, nil)
	user := routing.Point{Latitude: 48.0, Longitude: 2.0}
	stations := []catalog.StationRecord{
		station("UNREACHABLE", 48.01, 2.0),
		station("REACHABLE", 48.02, 2.0),
	}

	best, ok := f.Nearest(context.Background(), user, stations)
	if !ok {
		t.Fatal("expected a nearest station despite one failure")
	}
	if best.Station.Address != "REACHABLE" {
		t.Errorf("nearest = %s, want REACHABLE", best.Station.Address)
	}
}

func TestFinderAllCandidatesFail(t *testing.T) {
	router := routerFunc(func(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
		return nil, errors.New("router down")
	})

	f := NewFinder(router, nil)
	_, ok := f.Nearest(context.Background(), routing.Point{}, []catalog.StationRecord{
		station("A", 48.01, 2.0),
	})
	if ok {
		t.Error("expected no result when every routing request fails")
	}
}

func TestFinderCapsRoutedCandidates(t *testing.T) {
	var calls int32
	router := routerFunc(func(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
		atomic.AddInt32(&calls, 1)
		return &routing.Route{DistanceMeters: to.Latitude * 1000}, nil
	})

	f := NewFinder(router, nil)
	f.SetLimits(2, time.Second, 3)

	user := routing.Point{Latitude: 48.0, Longitude: 2.0}
	var stations []catalog.StationRecord
	for i := 0; i < 10; i++ {
		stations = append(stations, station("S", 48.01+float64(i)/100, 2.0))
	}

	if _, ok := f.Nearest(context.Background(), user, stations); !ok {
		t.Fatal("expected a result")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("routed %d candidates, want 3", got)
	}
}

func TestFinderConcurrentCallsAreIndependent(t *testing.T) {
	// Client A's routing request stalls until client B's whole call has
	// finished on the same Finder. A's result must survive B's call.
	release := make(chan struct{})
	router := routerFunc(func(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
		if from.Latitude == 48.0 {
			<-release
			return &routing.Route{DistanceMeters: 700}, nil
		}
		return &routing.Route{DistanceMeters: 2500}, nil
	})

	f := NewFinder(router, nil)

	type result struct {
		best Candidate
		ok   bool
	}
	resultA := make(chan result, 1)
	go func() {
		best, ok := f.Nearest(context.Background(),
			routing.Point{Latitude: 48.0, Longitude: 2.0},
			[]catalog.StationRecord{station("A-STATION", 48.01, 2.0)})
		resultA <- result{best, ok}
	}()

	bestB, ok := f.Nearest(context.Background(),
		routing.Point{Latitude: 45.0, Longitude: 4.0},
		[]catalog.StationRecord{station("B-STATION", 45.01, 4.0)})
	if !ok || bestB.Station.Address != "B-STATION" {
		t.Fatalf("client B got %v (ok=%v), want B-STATION", bestB.Station.Address, ok)
	}

	close(release)
	a := <-resultA
	if !a.ok {
		t.Fatal("client A got no station even though its routing request succeeded")
	}
	if a.best.Station.Address != "A-STATION" {
		t.Errorf("client A got %s, want A-STATION", a.best.Station.Address)
	}
}

func TestFinderRespectsTimeout(t *testing.T) {
	router := routerFunc(func(ctx context.Context, from, to routing.Point) (*routing.Route, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return &routing.Route{DistanceMeters: 100}, nil
		}
	})

	f := NewFinder(router, nil)
	f.SetLimits(2, 20*time.Millisecond, 0)

	start := time.Now()
	_, ok := f.Nearest(context.Background(), routing.Point{}, []catalog.StationRecord{
		station("SLOW", 48.01, 2.0),
	})
	if ok {
		t.Error("timed-out candidate must be dropped")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Nearest did not honor the per-request timeout")
	}
}
