package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestPickLocalityFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		addr address
		want string
	}{
		{"city wins", address{City: "Lyon", Suburb: "Confluence", County: "Rhône"}, "Lyon"},
		{"town over suburb", address{Town: "Vienne", Suburb: "Estressin"}, "Vienne"},
		{"village", address{Village: "Oingt"}, "Oingt"},
		{"suburb when no locality", address{Suburb: "La Défense", County: "Hauts-de-Seine"}, "La Défense"},
		{"city district", address{CityDistrict: "3e Arrondissement"}, "3e Arrondissement"},
		{"county last", address{County: "Lozère"}, "Lozère"},
		{"nothing", address{}, ""},
	}

	for _, tt := range tests {
		if got := pickLocality(tt.addr); got != tt.want {
			t.Errorf("%s: pickLocality() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCityAt(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"display_name": "Paris, Île-de-France, France",
			"address":      map[string]string{"city": "Paris"},
		})
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	city, err := g.CityAt(context.Background(), 48.8566, 2.3522)
	if err != nil {
		t.Fatalf("CityAt() failed: %v", err)
	}
	if city != "Paris" {
		t.Errorf("city = %q, want Paris", city)
	}

	// Second lookup in the same ~100m bucket is served from cache.
	if _, err := g.CityAt(context.Background(), 48.85661, 2.35221); err != nil {
		t.Fatalf("cached CityAt() failed: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits)
	}
}

func TestCityAtNoLocality(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"address": map[string]string{}})
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	_, err := g.CityAt(context.Background(), 0, 0)
	if !errors.Is(err, ErrNoLocality) {
		t.Errorf("CityAt() = %v, want ErrNoLocality", err)
	}
}

func TestCityAtUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	if _, err := g.CityAt(context.Background(), 48.0, 2.0); err == nil {
		t.Error("expected an error on upstream failure")
	}
}
