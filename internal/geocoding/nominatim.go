// Package geocoding resolves workout coordinates to place names using the
// Nominatim reverse geocoding API.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/observability"
)

const (
	DefaultBaseURL     = "https://nominatim.openstreetmap.org"
	DefaultUserAgent   = "workout-tracker/1.0"
	defaultTimeout     = 10 * time.Second
	defaultMinInterval = time.Second // Nominatim usage policy: max 1 request per second
)

// NominatimResponse is the subset of the reverse lookup payload we read.
type NominatimResponse struct {
	Address NominatimAddress `json:"address"`
}

type NominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	Suburb  string `json:"suburb"`
	Country string `json:"country"`
}

// Client is a domain.Geocoder backed by Nominatim.
type Client struct {
	baseURL     string
	userAgent   string
	minInterval time.Duration
	httpClient  *http.Client

	rateMu      sync.Mutex
	lastRequest time.Time

	cacheMu sync.RWMutex
	cache   map[string]domain.Place
}

// NewClient creates a Nominatim client from configuration, filling defaults.
func NewClient(cfg config.GeocodingConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	minInterval := cfg.MinInterval
	if minInterval < 0 {
		minInterval = defaultMinInterval
	}
	return &Client{
		baseURL:     baseURL,
		userAgent:   userAgent,
		minInterval: minInterval,
		httpClient:  &http.Client{Timeout: timeout},
		cache:       make(map[string]domain.Place),
	}
}

// ReverseGeocode returns the city and country at c. Any failure is logged and
// reported as domain.UnknownPlace; callers never see an error.
func (c *Client) ReverseGeocode(ctx context.Context, coords domain.Coords) domain.Place {
	key := fmt.Sprintf("%.4f,%.4f", coords.Lat, coords.Lon)
	c.cacheMu.RLock()
	place, cached := c.cache[key]
	c.cacheMu.RUnlock()
	if cached {
		observability.RecordGeocode("cached")
		return place
	}

	place, err := c.lookup(ctx, coords)
	if err != nil {
		log.Printf("WARN: Reverse geocoding failed for %s: %v", key, err)
		observability.RecordGeocode("failed")
		return domain.UnknownPlace
	}
	observability.RecordGeocode("ok")

	c.cacheMu.Lock()
	c.cache[key] = place
	c.cacheMu.Unlock()
	return place
}

func (c *Client) lookup(ctx context.Context, coords domain.Coords) (domain.Place, error) {
	if err := c.wait(ctx); err != nil {
		return domain.Place{}, err
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", coords.Lat))
	q.Set("lon", fmt.Sprintf("%.6f", coords.Lon))
	q.Set("format", "json")
	endpoint := c.baseURL + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Place{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Place{}, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Place{}, fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Place{}, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	return domain.Place{
		City:    cityName(payload.Address),
		Country: payload.Address.Country,
	}, nil
}

// wait enforces the minimum interval between upstream requests.
func (c *Client) wait(ctx context.Context) error {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if elapsed := time.Since(c.lastRequest); elapsed < c.minInterval {
		timer := time.NewTimer(c.minInterval - elapsed)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// cityName picks the locality: city > town > village > suburb.
func cityName(addr NominatimAddress) string {
	for _, candidate := range []string{addr.City, addr.Town, addr.Village, addr.Suburb} {
		if candidate != "" {
			return candidate
		}
	}
	return domain.UnknownCity
}
