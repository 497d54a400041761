// Package api provides a client for the French government open-data fuel
// price dataset (data.economie.gouv.fr), exposing the instant fuel price
// records for an area as raw station records.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the records search endpoint of the opendata platform.
	DefaultBaseURL = "https://data.economie.gouv.fr/api/records/1.0/search/"
	// DefaultDataset is the instant fuel price dataset identifier.
	DefaultDataset = "prix-des-carburants-en-france-flux-instantane-v2"
	// DefaultRows is the row limit sent with every query.
	DefaultRows = 100

	DefaultTimeout = 30 * time.Second
)

// TransportError reports a failure to reach the dataset or a non-2xx
// answer from it. It is fatal to the search that issued the query.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fuel data transport: %v", e.Err)
	}
	return fmt.Sprintf("fuel data transport: unexpected status code %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BoundingBox is a geographic area filter, north-west to south-east.
type BoundingBox struct {
	NorthLat float64
	WestLng  float64
	SouthLat float64
	EastLng  float64
}

// FuelPriceAPI provides methods to fetch fuel station records from the
// opendata platform.
type FuelPriceAPI struct {
	baseURL    string
	dataset    string
	rows       int
	httpClient *http.Client
}

// NewFuelPriceAPI creates a FuelPriceAPI client with default settings.
func NewFuelPriceAPI() *FuelPriceAPI {
	return New(DefaultBaseURL, DefaultDataset, DefaultRows)
}

// New creates a FuelPriceAPI client. Empty or zero arguments fall back to
// the defaults.
func New(baseURL, dataset string, rows int) *FuelPriceAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if dataset == "" {
		dataset = DefaultDataset
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	return &FuelPriceAPI{
		baseURL: baseURL,
		dataset: dataset,
		rows:    rows,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// FetchCity fetches the station records for a city, matching on the
// dataset's "ville" field.
func (api *FuelPriceAPI) FetchCity(ctx context.Context, city string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("ville:%s", city))
	return api.fetch(ctx, params)
}

// FetchBoundingBox fetches the station records inside a bounding box.
func (api *FuelPriceAPI) FetchBoundingBox(ctx context.Context, box BoundingBox) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("geofilter.bbox", fmt.Sprintf("%f,%f,%f,%f",
		box.NorthLat, box.WestLng, box.SouthLat, box.EastLng))
	return api.fetch(ctx, params)
}

func (api *FuelPriceAPI) fetch(ctx context.Context, params url.Values) (*SearchResponse, error) {
	params.Set("dataset", api.dataset)
	params.Set("rows", fmt.Sprintf("%d", api.rows))
	fetchURL := fmt.Sprintf("%s?%s", api.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var searchResponse SearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return &searchResponse, nil
}
