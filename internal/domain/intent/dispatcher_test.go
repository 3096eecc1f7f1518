package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
)

type stubTrips struct {
	trip.Service
	calls []string
}

func (s *stubTrips) Plan(_ context.Context, req trip.PlanRequest) (trip.Trip, error) {
	s.calls = append(s.calls, "plan:"+req.City+":"+req.Pace)
	return trip.Trip{ID: "new"}, nil
}

func (s *stubTrips) EditDay(_ context.Context, id string, day int, pace string) (trip.EditResult, error) {
	s.calls = append(s.calls, "edit:"+id+":"+pace)
	return trip.EditResult{Trip: trip.Trip{ID: id}, Evaluation: evaluation.EditReport{Status: evaluation.StatusPass}}, nil
}

func (s *stubTrips) Explain(_ context.Context, id, target string) (trip.Explanation, error) {
	s.calls = append(s.calls, "explain:"+id+":"+target)
	return trip.Explanation{Type: trip.ExplanationPlanSummary}, nil
}

func (s *stubTrips) AdjustForWeather(_ context.Context, id string) (trip.WeatherAdjustment, error) {
	s.calls = append(s.calls, "weather:"+id)
	return trip.WeatherAdjustment{Trip: trip.Trip{ID: id}, AdjustedDays: []int{1}}, nil
}

func TestDispatchRoutesEachCommand(t *testing.T) {
	trips := &stubTrips{}
	d := NewDispatcher(trips)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, PlanCommand{City: "Delhi", Interests: []string{"food"}, Days: 1, Pace: "relaxed"}, "")
	require.NoError(t, err)
	require.Equal(t, OutcomePlan, res.Intent)
	require.Equal(t, "new", res.Trip.ID)

	res, err = d.Dispatch(ctx, EditDayPaceCommand{TripID: "t1", Day: 1, Pace: "packed"}, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeEditDayPace, res.Intent)
	require.Equal(t, evaluation.StatusPass, res.EditEval.Status)

	res, err = d.Dispatch(ctx, ExplainCommand{TripID: "t1", Target: "plan"}, "why this plan?")
	require.NoError(t, err)
	require.Equal(t, OutcomeExplain, res.Intent)
	require.NotNil(t, res.Explanation)

	res, err = d.Dispatch(ctx, ExplainCommand{TripID: "t1"}, "What if it Rains tomorrow?")
	require.NoError(t, err)
	require.Equal(t, OutcomeWeatherAdjustment, res.Intent)
	require.Equal(t, []int{1}, res.AdjustedDays)

	require.Equal(t, []string{"plan:Delhi:relaxed", "edit:t1:packed", "explain:t1:plan", "weather:t1"}, trips.calls)
}

func TestMutates(t *testing.T) {
	require.False(t, Mutates(PlanCommand{}, "rain"))
	require.True(t, Mutates(EditDayPaceCommand{}, ""))
	require.False(t, Mutates(ExplainCommand{}, "why"))
	require.True(t, Mutates(ExplainCommand{}, "is rain expected"))
}
