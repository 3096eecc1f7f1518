package openmeteo

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

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	"github.com/yanqian/ai-tripplanner/internal/infra/httpx"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	dailyFields    = "temperature_2m_max,temperature_2m_min,precipitation_sum"
)

// Client fetches daily forecasts from Open-Meteo.
type Client struct {
	baseURL    string
	cities     map[string]itinerary.Coordinates
	maxDays    int
	httpClient *http.Client
	retry      httpx.RetryPolicy
}

// NewClient builds an API client. cities maps a lower-case city name to the point forecast for it.
func NewClient(baseURL string, cities map[string]itinerary.Coordinates, maxDays int, timeout time.Duration, retry httpx.RetryPolicy) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	normalized := make(map[string]itinerary.Coordinates, len(cities))
	for city, loc := range cities {
		normalized[strings.ToLower(strings.TrimSpace(city))] = loc
	}
	return &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		cities:     normalized,
		maxDays:    maxDays,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
	}
}

// Forecast implements trip.WeatherProvider.
func (c *Client) Forecast(ctx context.Context, city string) ([]trip.DailyForecast, error) {
	loc, ok := c.cities[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return nil, trip.UnsupportedCity(city)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	params.Set("daily", dailyFields)
	params.Set("timezone", "auto")
	endpoint := c.baseURL + "?" + params.Encode()

	resp, err := httpx.Do(ctx, c.httpClient, c.retry, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read forecast response: %w", err)
	}
	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}
	if raw.Error {
		return nil, fmt.Errorf("forecast api error: %s", raw.Reason)
	}
	return normalizeDaily(raw.Daily, c.maxDays), nil
}

type apiResponse struct {
	Error  bool      `json:"error"`
	Reason string    `json:"reason"`
	Daily  dailyData `json:"daily"`
}

type dailyData struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}

func normalizeDaily(d dailyData, maxDays int) []trip.DailyForecast {
	n := len(d.Time)
	if maxDays > 0 && n > maxDays {
		n = maxDays
	}
	out := make([]trip.DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, trip.DailyForecast{
			Date:            d.Time[i],
			MaxTempC:        valueAt(d.TemperatureMax, i),
			MinTempC:        valueAt(d.TemperatureMin, i),
			PrecipitationMM: valueAt(d.PrecipitationSum, i),
		})
	}
	return out
}

// valueAt treats missing or null samples as zero.
func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
