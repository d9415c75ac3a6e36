package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client resolves free-text addresses against the OpenStreetMap
// Nominatim API. All lookups are best-effort; callers proceed without
// coordinates when a lookup fails.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward geocodes a free-text address. Returns nil without error when
// the address cannot be resolved.
func (c *Client) Forward(ctx context.Context, address string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []searchResult
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in geocoder response: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in geocoder response: %w", err)
	}

	return &Coordinates{Lat: lat, Lng: lng}, nil
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
}

// Reverse resolves coordinates to a display address. Returns "" without
// error when nothing is found.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")

	var result reverseResult
	if err := c.get(ctx, "/reverse", q, &result); err != nil {
		return "", err
	}
	return result.DisplayName, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	return nil
}
