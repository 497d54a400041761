// Package geocode resolves a coordinate to the city name the fuel price
// dataset is filtered on. It consumes a Nominatim endpoint; the geocoding
// itself is the service's business.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// DefaultServer is the public Nominatim instance.
	DefaultServer = "https://nominatim.openstreetmap.org"

	defaultTimeout = 10 * time.Second

	cacheExpiry  = 30 * time.Minute
	cacheCleanup = 90 * time.Minute
)

// ErrNoLocality is returned when the reverse geocoder answers but no
// usable place name can be extracted at any fallback level.
var ErrNoLocality = errors.New("no locality for coordinate")

// address is the subset of the Nominatim address object the fallback
// chain reads.
type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Suburb       string `json:"suburb"`
	CityDistrict string `json:"city_district"`
	County       string `json:"county"`
}

type reverseResponse struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

// Geocoder reverse-geocodes coordinates, caching answers so repeated
// searches near the same spot do not hammer the public endpoint.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	log        *slog.Logger
}

// New creates a Geocoder. An empty baseURL falls back to the public
// Nominatim instance.
func New(baseURL string, logger *slog.Logger) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultServer
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Geocoder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		cache: cache.New(cacheExpiry, cacheCleanup),
		log:   logger,
	}
}

// CityAt resolves a coordinate to a city name, falling back through
// sub-locality and sub-administrative-area names when no city-level name
// exists.
func (g *Geocoder) CityAt(ctx context.Context, lat, lon float64) (string, error) {
	// ~100m bucket; close-by searches resolve to the same city anyway.
	cacheKey := fmt.Sprintf("reverse_%.3f_%.3f", lat, lon)
	if cached, found := g.cache.Get(cacheKey); found {
		g.log.Debug("using cached reverse geocode", "key", cacheKey)
		return cached.(string), nil
	}

	reverseURL := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%f&lon=%f&zoom=10&addressdetails=1",
		g.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reverseURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	city := pickLocality(parsed.Address)
	if city == "" {
		return "", ErrNoLocality
	}

	g.cache.Set(cacheKey, city, cache.DefaultExpiration)
	return city, nil
}

// pickLocality walks the fallback chain: locality (city, town, village),
// then sub-locality (suburb, city district), then sub-administrative area
// (county).
func pickLocality(a address) string {
	for _, name := range []string{a.City, a.Town, a.Village, a.Suburb, a.CityDistrict, a.County} {
		if name != "" {
			return name
		}
	}
	return ""
}
