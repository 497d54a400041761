package nearest

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/routing"
)

func candidate(address string, distance float64) Candidate {
	return Candidate{
		Station: catalog.StationRecord{Address: address},
		Route:   routing.Route{DistanceMeters: distance},
	}
}

func TestSelectorOrderIndependence(t *testing.T) {
	base := []Candidate{
		candidate("A", 1200),
		candidate("B", 340),
		candidate("C", 2100),
		candidate("D", 900),
		candidate("E", 341),
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		perm := make([]Candidate, len(base))
		copy(perm, base)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		s := NewSelector()
		gen := s.NewSearch()
		for _, c := range perm {
			s.Offer(gen, c)
		}

		best, ok := s.Best(gen)
		if !ok {
			t.Fatal("expected a best candidate")
		}
		if best.Station.Address != "B" {
			t.Fatalf("permutation %d: best = %s (%.0f m), want B", i, best.Station.Address, best.Route.DistanceMeters)
		}
	}
}

func TestSelectorTieBreakFirstOfferedWins(t *testing.T) {
	s := NewSelector()
	gen := s.NewSearch()

	s.Offer(gen, candidate("first", 500))
	if improved := s.Offer(gen, candidate("second", 500)); improved {
		t.Error("exact tie must not replace the incumbent")
	}

	best, _ := s.Best(gen)
	if best.Station.Address != "first" {
		t.Errorf("best = %s, want first", best.Station.Address)
	}

	// Same distances offered in the other order: the other one wins.
	gen = s.NewSearch()
	s.Offer(gen, candidate("second", 500))
	s.Offer(gen, candidate("first", 500))
	best, _ = s.Best(gen)
	if best.Station.Address != "second" {
		t.Errorf("best = %s, want second", best.Station.Address)
	}
}

func TestSelectorStaleGenerationIgnored(t *testing.T) {
	s := NewSelector()

	genA := s.NewSearch()
	genB := s.NewSearch()
	s.Offer(genB, candidate("B-station", 800))

	// Search A's late candidates arrive after B started; they must not
	// touch B's best even though they are closer.
	if improved := s.Offer(genA, candidate("A-station", 10)); improved {
		t.Error("stale offer reported as improvement")
	}

	best, ok := s.Best(genB)
	if !ok || best.Station.Address != "B-station" {
		t.Errorf("best = %+v, want B-station", best)
	}

	// Reads against the stale search return nothing.
	if _, ok := s.Best(genA); ok {
		t.Error("Best() answered for a superseded generation")
	}
}

func TestSelectorEmptySearch(t *testing.T) {
	s := NewSelector()
	gen := s.NewSearch()
	if _, ok := s.Best(gen); ok {
		t.Error("expected no best before any offer")
	}
}

func TestSelectorConcurrentOffers(t *testing.T) {
	s := NewSelector()
	gen := s.NewSearch()

	var wg sync.WaitGroup
	for d := 100; d <= 2000; d += 100 {
		wg.Add(1)
		go func(distance float64) {
			defer wg.Done()
			s.Offer(gen, candidate("station", distance))
		}(float64(d))
	}
	wg.Wait()

	best, ok := s.Best(gen)
	if !ok || best.Route.DistanceMeters != 100 {
		t.Errorf("best distance = %v, want 100", best.Route.DistanceMeters)
	}
}
