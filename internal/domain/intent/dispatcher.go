package intent

import (
	"context"
	"strings"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
	"github.com/yanqian/ai-tripplanner/pkg/metrics"
)

// Outcome names what a dispatched command did.
const (
	OutcomePlan              = "PLAN"
	OutcomeEditDayPace       = "EDIT_DAY_PACE"
	OutcomeExplain           = "EXPLAIN"
	OutcomeWeatherAdjustment = "WEATHER_ADJUSTMENT"
)

// Result is the response to a dispatched command.
type Result struct {
	Intent       string                 `json:"intent"`
	Trip         *trip.Trip             `json:"trip,omitempty"`
	EditEval     *evaluation.EditReport `json:"editEval,omitempty"`
	Explanation  *trip.Explanation      `json:"explanation,omitempty"`
	Forecast     []trip.DailyForecast   `json:"forecast,omitempty"`
	AdjustedDays []int                  `json:"adjustedDays,omitempty"`
	Usage        *metrics.TokenUsage    `json:"usage,omitempty"`
}

// Dispatcher executes commands against the trip service.
type Dispatcher struct {
	trips trip.Service
}

// NewDispatcher wires the dispatcher.
func NewDispatcher(trips trip.Service) *Dispatcher {
	return &Dispatcher{trips: trips}
}

// Mutates reports whether running cmd would modify an existing trip.
func Mutates(cmd Command, utterance string) bool {
	switch cmd.(type) {
	case EditDayPaceCommand:
		return true
	case ExplainCommand:
		return mentionsRain(utterance)
	}
	return false
}

// Dispatch runs cmd. utterance is the user's original text, empty for structured commands;
// an EXPLAIN whose utterance mentions rain becomes a weather adjustment.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command, utterance string) (Result, error) {
	switch c := cmd.(type) {
	case PlanCommand:
		t, err := d.trips.Plan(ctx, trip.PlanRequest{City: c.City, Interests: c.Interests, Days: c.Days, Pace: c.Pace})
		if err != nil {
			return Result{}, err
		}
		return Result{Intent: OutcomePlan, Trip: &t}, nil
	case EditDayPaceCommand:
		res, err := d.trips.EditDay(ctx, c.TripID, c.Day, c.Pace)
		if err != nil {
			return Result{}, err
		}
		return Result{Intent: OutcomeEditDayPace, Trip: &res.Trip, EditEval: &res.Evaluation}, nil
	case ExplainCommand:
		if mentionsRain(utterance) {
			adj, err := d.trips.AdjustForWeather(ctx, c.TripID)
			if err != nil {
				return Result{}, err
			}
			return Result{Intent: OutcomeWeatherAdjustment, Trip: &adj.Trip, Forecast: adj.Forecast, AdjustedDays: adj.AdjustedDays}, nil
		}
		exp, err := d.trips.Explain(ctx, c.TripID, c.Target)
		if err != nil {
			return Result{}, err
		}
		return Result{Intent: OutcomeExplain, Explanation: &exp}, nil
	default:
		return Result{}, apperrors.Newf(CodeUnsupportedIntent, "unsupported command %T", cmd)
	}
}

func mentionsRain(utterance string) bool {
	return strings.Contains(strings.ToLower(utterance), "rain")
}
