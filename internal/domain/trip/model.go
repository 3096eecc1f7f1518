package trip

import (
	"time"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

// Trip is a stored plan addressed by its handle ID.
type Trip struct {
	ID        string              `json:"id"`
	State     itinerary.TripState `json:"state"`
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Clone deep-copies the trip state.
func (t Trip) Clone() Trip {
	t.State = t.State.Clone()
	return t
}

// PlanRequest starts a new trip. Hours default to 9..18 when both are nil.
type PlanRequest struct {
	City      string   `json:"city"`
	Interests []string `json:"interests"`
	Days      int      `json:"days"`
	Pace      string   `json:"pace"`
	StartHour *int     `json:"startHour,omitempty"`
	EndHour   *int     `json:"endHour,omitempty"`
}

// EditResult carries the edited trip with the pre-edit snapshot and its regression check.
type EditResult struct {
	Trip       Trip                  `json:"trip"`
	Before     itinerary.TripState   `json:"-"`
	Evaluation evaluation.EditReport `json:"editEval"`
}

// Explanation answers an explain query.
type Explanation struct {
	Type      string              `json:"type"`
	Message   string              `json:"message"`
	TotalPOIs int                 `json:"totalPois,omitempty"`
	Days      int                 `json:"days,omitempty"`
	Pace      itinerary.Pace      `json:"pace,omitempty"`
	Day       int                 `json:"day,omitempty"`
	POI       *itinerary.POIBlock `json:"poi,omitempty"`
	Reasons   []string            `json:"reasons,omitempty"`
}

// Explanation types.
const (
	ExplanationPlanSummary = "plan_summary"
	ExplanationPOI         = "poi"
)

// WeatherAdjustment reports which days were rebuilt for rain.
type WeatherAdjustment struct {
	Trip         Trip            `json:"trip"`
	Forecast     []DailyForecast `json:"forecast"`
	AdjustedDays []int           `json:"adjustedDays"`
}
