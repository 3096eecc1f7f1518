package trip

import (
	"context"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

// SearchQuery asks the POI provider for ranked candidates.
type SearchQuery struct {
	City       string
	Interests  []string
	MaxResults int
}

// POIProvider returns candidates in relevance order. Unknown cities fail with CodeUnsupportedCity.
type POIProvider interface {
	Search(ctx context.Context, query SearchQuery) ([]itinerary.CandidatePOI, error)
}

// DailyForecast is one upcoming day, index-aligned with trip days.
type DailyForecast struct {
	Date            string  `json:"date"`
	MaxTempC        float64 `json:"maxTemp"`
	MinTempC        float64 `json:"minTemp"`
	PrecipitationMM float64 `json:"precipitation"`
}

// WeatherProvider returns the forecast for a city starting today.
type WeatherProvider interface {
	Forecast(ctx context.Context, city string) ([]DailyForecast, error)
}

// Repository persists trips by ID. Get returns copies; Update fails with ErrVersionConflict on a stale version.
type Repository interface {
	Create(ctx context.Context, t Trip) error
	Get(ctx context.Context, id string) (Trip, bool, error)
	Update(ctx context.Context, t Trip, expectedVersion int) error
}
