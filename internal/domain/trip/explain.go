package trip

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

// categoryInterest maps provider categories back to the interest that surfaced them.
var categoryInterest = map[string]string{
	"museum":           "history",
	"place_of_worship": "culture",
	"restaurant":       "food",
	"park":             "nature",
}

const travelMethodology = "Travel times use straight-line (haversine) distance at an average city speed of 25 km/h plus a 10 minute traffic buffer."

func (s *service) Explain(ctx context.Context, id, target string) (Explanation, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return Explanation{}, err
	}
	state := t.State

	query := strings.TrimSpace(target)
	if query == "" || strings.EqualFold(query, "plan") {
		return summarizePlan(state), nil
	}

	needle := strings.ToLower(query)
	for _, day := range state.Days {
		for i, block := range day.Blocks {
			if strings.Contains(strings.ToLower(block.Name), needle) {
				return explainBlock(state, day, i), nil
			}
		}
	}
	return Explanation{}, apperrors.Newf(CodeTargetNotFound, "nothing in the plan matches %q", query)
}

func summarizePlan(state itinerary.TripState) Explanation {
	c := state.Constraints
	total := state.POICount()
	return Explanation{
		Type: ExplanationPlanSummary,
		Message: fmt.Sprintf(
			"%d-day %s plan for %s with %d places, at most %d per day between %02d:00 and %02d:00. %s",
			len(state.Days), c.Pace, state.City, total, c.Pace.Limit(), c.DailyStartHour, c.DailyEndHour, travelMethodology,
		),
		TotalPOIs: total,
		Days:      len(state.Days),
		Pace:      c.Pace,
	}
}

func explainBlock(state itinerary.TripState, day itinerary.DayPlan, index int) Explanation {
	block := day.Blocks[index]
	c := state.Constraints

	startMinute := c.DailyStartHour * 60
	for _, prev := range day.Blocks[:index] {
		startMinute += prev.TravelMinutesFromPrevious + prev.DurationMinutes
	}
	startMinute += block.TravelMinutesFromPrevious
	endMinute := startMinute + block.DurationMinutes

	reasons := []string{interestReason(state, block)}
	reasons = append(reasons, fmt.Sprintf(
		"Fits the %02d:00-%02d:00 window: visit runs %s-%s and day %d uses %d of %d available minutes.",
		c.DailyStartHour, c.DailyEndHour, clock(startMinute), clock(endMinute), day.Day, day.TotalMinutes(), c.AvailableMinutes(),
	))
	reasons = append(reasons, travelReason(day, index))

	poi := block
	return Explanation{
		Type:    ExplanationPOI,
		Message: fmt.Sprintf("%s is stop %d on day %d.", block.Name, index+1, day.Day),
		Day:     day.Day,
		POI:     &poi,
		Reasons: reasons,
	}
}

func interestReason(state itinerary.TripState, block itinerary.POIBlock) string {
	interest, ok := categoryInterest[block.Category]
	if ok && slices.Contains(state.Interests, interest) {
		return fmt.Sprintf("Matches your interest in %s (%s).", interest, strings.ReplaceAll(block.Category, "_", " "))
	}
	return fmt.Sprintf("Ranked among the top %s results for %s.", strings.Join(state.Interests, ", "), state.City)
}

func travelReason(day itinerary.DayPlan, index int) string {
	block := day.Blocks[index]
	if index == 0 {
		return fmt.Sprintf("First stop of day %d, so no transfer is needed.", day.Day)
	}
	prev := day.Blocks[index-1].Name
	if block.TravelMinutesFromPrevious > evaluation.LongTransferMinutes {
		return fmt.Sprintf("Long transfer of %d minutes from %s; consider swapping it.", block.TravelMinutesFromPrevious, prev)
	}
	return fmt.Sprintf("Only %d minutes from the previous stop, %s.", block.TravelMinutesFromPrevious, prev)
}

func clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
