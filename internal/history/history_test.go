package history

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(context.Background(), filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("NewStorage() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogSearchGroupsNearbyLocations(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// Same ~1km bucket after precision reduction.
	if err := s.LogSearch(ctx, 48.8566, 2.3522); err != nil {
		t.Fatalf("LogSearch() failed: %v", err)
	}
	if err := s.LogSearch(ctx, 48.8567, 2.3524); err != nil {
		t.Fatalf("LogSearch() failed: %v", err)
	}
	// A different city.
	if err := s.LogSearch(ctx, 45.7640, 4.8357); err != nil {
		t.Fatalf("LogSearch() failed: %v", err)
	}

	logs, err := s.RecentSearches(ctx, 0)
	if err != nil {
		t.Fatalf("RecentSearches() failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logged locations, got %d", len(logs))
	}
	if logs[0].SearchCount != 2 {
		t.Errorf("expected the repeated location first with count 2, got %d", logs[0].SearchCount)
	}
}

func TestPopularLocationsClustersAndSorts(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.LogSearch(ctx, 48.85, 2.35); err != nil {
			t.Fatalf("LogSearch() failed: %v", err)
		}
	}
	if err := s.LogSearch(ctx, 45.76, 4.83); err != nil {
		t.Fatalf("LogSearch() failed: %v", err)
	}

	popular, err := s.PopularLocations(ctx, 10)
	if err != nil {
		t.Fatalf("PopularLocations() failed: %v", err)
	}
	if len(popular) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(popular))
	}
	if popular[0].SearchCount != 3 {
		t.Errorf("expected the most searched cluster first, got count %d", popular[0].SearchCount)
	}
	if popular[1].SearchCount != 1 {
		t.Errorf("expected the single search second, got count %d", popular[1].SearchCount)
	}
}

func TestRecentSearchesLimit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	coords := [][2]float64{{48.85, 2.35}, {45.76, 4.83}, {43.30, 5.37}}
	for _, c := range coords {
		if err := s.LogSearch(ctx, c[0], c[1]); err != nil {
			t.Fatalf("LogSearch() failed: %v", err)
		}
	}

	logs, err := s.RecentSearches(ctx, 2)
	if err != nil {
		t.Fatalf("RecentSearches() failed: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("expected 2 rows with limit 2, got %d", len(logs))
	}
}
