package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zuru/internal/domain"
)

// NominatimClient talks to an OpenStreetMap Nominatim compatible API.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimClient creates a client for baseURL. Nominatim's usage policy
// requires an identifying User-Agent.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		State   string `json:"state"`
	} `json:"address"`
}

// locality prefers the most specific settlement name, falling back to the
// full display name.
func (p nominatimPlace) locality() string {
	for _, s := range []string{p.Address.City, p.Address.Town, p.Address.Village, p.Address.County, p.Address.State} {
		if s != "" {
			return s
		}
	}
	return p.DisplayName
}

// Reverse returns the locality name at coord.
func (c *NominatimClient) Reverse(ctx context.Context, coord domain.Coordinate) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(coord.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(coord.Lng, 'f', 6, 64))

	var place nominatimPlace
	if err := c.get(ctx, "/reverse", q, &place); err != nil {
		return "", err
	}
	if place.Error != "" {
		return "", ErrNoResult
	}

	name := place.locality()
	if name == "" {
		return "", ErrNoResult
	}
	return name, nil
}

// Forward returns the coordinate of the best match for name.
func (c *NominatimClient) Forward(ctx context.Context, name string) (domain.Coordinate, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("q", name)
	q.Set("limit", "1")

	var places []nominatimPlace
	if err := c.get(ctx, "/search", q, &places); err != nil {
		return domain.Coordinate{}, err
	}
	if len(places) == 0 {
		return domain.Coordinate{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}

	return domain.Coordinate{Lat: lat, Lng: lng}, nil
}

func (c *NominatimClient) get(ctx context.Context, path string, q url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode geocoder response: %w", err)
	}
	return nil
}
