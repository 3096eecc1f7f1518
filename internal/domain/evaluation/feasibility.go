package evaluation

import "github.com/yanqian/ai-tripplanner/internal/domain/itinerary"

// LongTransferMinutes is the largest single transfer a feasible day may contain.
const LongTransferMinutes = 90

// Feasibility re-checks every day against the time budget, pace limit and long-transfer tripwire.
// It does not trust the builder: edits and rebuilds can reintroduce violations.
func Feasibility(trip itinerary.TripState) FeasibilityReport {
	available := trip.Constraints.AvailableMinutes()
	limit := trip.Constraints.Pace.Limit()

	report := FeasibilityReport{
		OverallStatus: StatusPass,
		DayResults:    make([]DayFeasibility, 0, len(trip.Days)),
	}
	for _, day := range trip.Days {
		result := DayFeasibility{
			Day:              day.Day,
			TotalMinutes:     day.TotalMinutes(),
			AvailableMinutes: available,
			POICount:         len(day.Blocks),
			PaceLimit:        limit,
			TravelIssues:     []TravelIssue{},
			Status:           StatusPass,
		}
		for _, block := range day.Blocks {
			if block.TravelMinutesFromPrevious > LongTransferMinutes {
				result.TravelIssues = append(result.TravelIssues, TravelIssue{
					POI:           block.Name,
					TravelMinutes: block.TravelMinutesFromPrevious,
				})
			}
		}
		if result.TotalMinutes > available || result.POICount > limit || len(result.TravelIssues) > 0 {
			result.Status = StatusFail
			report.OverallStatus = StatusFail
		}
		report.DayResults = append(report.DayResults, result)
	}
	return report
}
