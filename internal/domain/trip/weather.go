package trip

import (
	"context"

	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

// AdjustForWeather rebuilds rainy days among the first three with indoor-leaning interests.
// Each qualifying day is rebuilt from its own candidate fetch; the rest of the trip is left as is.
func (s *service) AdjustForWeather(ctx context.Context, id string) (WeatherAdjustment, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		return WeatherAdjustment{}, err
	}

	forecast, err := s.weather.Forecast(ctx, t.State.City)
	if err != nil {
		if apperrors.IsCode(err, CodeUnsupportedCity) {
			return WeatherAdjustment{}, err
		}
		return WeatherAdjustment{}, apperrors.Wrap(CodeWeatherProvider, "failed to fetch forecast", err)
	}
	if len(forecast) > forecastWindow {
		forecast = forecast[:forecastWindow]
	}

	adjusted := []int{}
	for i, f := range forecast {
		if i >= len(t.State.Days) {
			break
		}
		if f.PrecipitationMM <= rainThresholdMM {
			continue
		}
		indoor, err := s.search(ctx, SearchQuery{City: t.State.City, Interests: indoorInterests, MaxResults: weatherMaxResults})
		if err != nil {
			return WeatherAdjustment{}, err
		}
		day, err := s.rebuildDay(indoor, t.State.Constraints, t.State.Constraints.Pace, i+1)
		if err != nil {
			return WeatherAdjustment{}, err
		}
		t.State.Days[i] = day
		adjusted = append(adjusted, i+1)
		s.logger.Info("rainy day rebuilt", "trip_id", id, "day", i+1, "date", f.Date, "precipitation_mm", f.PrecipitationMM)
	}

	if len(adjusted) > 0 {
		if err := s.save(ctx, &t); err != nil {
			return WeatherAdjustment{}, err
		}
	}
	return WeatherAdjustment{Trip: t.Clone(), Forecast: forecast, AdjustedDays: adjusted}, nil
}
