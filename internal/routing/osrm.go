// Package routing provides a driving-route client backed by an OSRM
// endpoint. The rest of the application only consumes the distance,
// duration and geometry it returns.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public OSRM demo endpoint.
	DefaultBaseURL = "https://router.project-osrm.org"

	defaultTimeout = 15 * time.Second
	defaultRPS     = 5
)

// Point is a WGS84 position.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Route is one driving route between two points. Geometry is the route
// polyline, kept opaque beyond drawing.
type Route struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Geometry        []Point `json:"geometry,omitempty"`
}

// Router computes a driving route between two points.
type Router interface {
	Route(ctx context.Context, from, to Point) (*Route, error)
}

// Client is an OSRM HTTP client with client-side rate limiting; the
// public demo server throttles aggressively.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates an OSRM client. An empty baseURL falls back to the public
// demo endpoint, rps <= 0 to a conservative default.
func New(baseURL string, rps int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = defaultRPS
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route computes the driving route between two points. The caller bounds
// the request with ctx; a timed-out or failed request is simply reported,
// retries are the server's concern, not ours.
func (c *Client) Route(ctx context.Context, from, to Point) (*Route, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// OSRM wants lon,lat pairs.
	routeURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, routeURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("no route found (code %q)", parsed.Code)
	}

	best := parsed.Routes[0]
	route := &Route{
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Geometry:        make([]Point, 0, len(best.Geometry.Coordinates)),
	}
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) != 2 {
			continue
		}
		route.Geometry = append(route.Geometry, Point{Latitude: pair[1], Longitude: pair[0]})
	}

	return route, nil
}
