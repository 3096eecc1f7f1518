package trip

import (
	"errors"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

// Error codes surfaced to callers.
const (
	CodeUnsupportedCity  = "unsupported_city"
	CodeNoActiveTrip     = "no_active_trip"
	CodeInvalidDayNumber = "invalid_day_number"
	CodeTargetNotFound   = "target_not_found"
	CodeValidation       = itinerary.CodeValidation
	CodePOIProvider      = "poi_provider_error"
	CodeWeatherProvider  = "weather_provider_error"
	CodeStorage          = "storage_error"
	CodeConflict         = "trip_conflict"
)

// ErrVersionConflict is returned by repositories when a concurrent writer got there first.
var ErrVersionConflict = errors.New("trip version conflict")

// UnsupportedCity is raised by POI providers for cities they do not cover.
func UnsupportedCity(city string) error {
	return apperrors.Newf(CodeUnsupportedCity, "city %q is not supported", city)
}

func noActiveTrip(id string) error {
	return apperrors.Newf(CodeNoActiveTrip, "no active trip for handle %q", id)
}
