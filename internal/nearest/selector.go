// Package nearest selects the closest reachable station among routed
// candidates as routing results stream in.
package nearest

import (
	"sync"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/routing"
)

// Candidate pairs a station with the driving route that reaches it.
type Candidate struct {
	Station catalog.StationRecord `json:"station"`
	Route   routing.Route         `json:"route"`
}

// Generation identifies one search. Offers carrying a superseded
// generation are ignored, so late routing results from an abandoned
// search can never corrupt the current one.
type Generation uint64

// Selector is a streaming minimum over candidate routes. Routing results
// arrive from concurrent requests in no particular order; the reduction
// is order-independent except for the tie-break, where the first offered
// candidate wins (strict less-than comparison).
type Selector struct {
	mu      sync.Mutex
	gen     Generation
	best    Candidate
	hasBest bool
}

func NewSelector() *Selector {
	return &Selector{}
}

// NewSearch starts a new search, discarding the running best and
// invalidating any in-flight offers from prior searches.
func (s *Selector) NewSearch() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.best = Candidate{}
	s.hasBest = false
	return s.gen
}

// Offer submits a candidate for the given search. It reports whether the
// candidate became the new best. Offers for a superseded generation are
// no-ops.
func (s *Selector) Offer(gen Generation, c Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	if !s.hasBest || c.Route.DistanceMeters < s.best.Route.DistanceMeters {
		s.best = c
		s.hasBest = true
		return true
	}
	return false
}

// Best returns the best candidate seen so far for the given search.
func (s *Selector) Best(gen Generation) (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.hasBest {
		return Candidate{}, false
	}
	return s.best, true
}
