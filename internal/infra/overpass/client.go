package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	"github.com/yanqian/ai-tripplanner/internal/infra/httpx"
)

const (
	defaultBaseURL       = "https://overpass-api.de/api/interpreter"
	defaultVisitMinutes  = 90
	attributionSource    = "OpenStreetMap"
	maxResponseBodyBytes = 8 << 20
)

// Client searches OpenStreetMap POIs through the Overpass API.
type Client struct {
	baseURL    string
	areas      map[string]string
	httpClient *http.Client
	retry      httpx.RetryPolicy
}

// NewClient builds a client. areas maps a lower-case city name to its OSM area name.
func NewClient(baseURL string, areas map[string]string, timeout time.Duration, retry httpx.RetryPolicy) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	normalized := make(map[string]string, len(areas))
	for city, area := range areas {
		normalized[strings.ToLower(strings.TrimSpace(city))] = area
	}
	return &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		areas:      normalized,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
	}
}

// Search implements trip.POIProvider.
func (c *Client) Search(ctx context.Context, query trip.SearchQuery) ([]itinerary.CandidatePOI, error) {
	area, ok := c.areas[strings.ToLower(strings.TrimSpace(query.City))]
	if !ok {
		return nil, trip.UnsupportedCity(query.City)
	}
	q, ok := buildQuery(area, query.Interests, query.MaxResults)
	if !ok {
		return []itinerary.CandidatePOI{}, nil
	}

	resp, err := httpx.Do(ctx, c.httpClient, c.retry, func(ctx context.Context) (*http.Request, error) {
		form := url.Values{"data": {q}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	var raw apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return normalizeElements(raw.Elements, query.MaxResults), nil
}

type apiResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func normalizeElements(elements []element, maxResults int) []itinerary.CandidatePOI {
	if maxResults > 0 && len(elements) > maxResults {
		elements = elements[:maxResults]
	}
	out := make([]itinerary.CandidatePOI, 0, len(elements))
	for _, el := range elements {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}
		loc := itinerary.Coordinates{Lat: el.Lat, Lon: el.Lon}
		if el.Center != nil && !loc.Present() {
			loc = itinerary.Coordinates{Lat: el.Center.Lat, Lon: el.Center.Lon}
		}
		cat := categoryOf(el.Tags)
		out = append(out, itinerary.CandidatePOI{
			ID:                fmt.Sprintf("osm_%d", el.ID),
			Name:              name,
			Category:          cat.value,
			Location:          loc,
			SuggestedDuration: defaultVisitMinutes,
			Indoor:            cat.indoor,
			Source:            attributionSource,
		})
	}
	return out
}
