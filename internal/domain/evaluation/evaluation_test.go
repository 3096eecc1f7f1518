package evaluation

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

func block(id string, duration, travel int) itinerary.POIBlock {
	return itinerary.POIBlock{
		POIID:                     "osm_" + id,
		Name:                      "POI " + id,
		Category:                  "museum",
		Lat:                       28.61,
		Lon:                       77.23,
		DurationMinutes:           duration,
		TravelMinutesFromPrevious: travel,
		Source:                    GroundedSource,
	}
}

func tripWith(pace itinerary.Pace, days ...itinerary.DayPlan) itinerary.TripState {
	return itinerary.TripState{
		City:        "Delhi",
		Interests:   []string{"history"},
		Constraints: itinerary.TripConstraints{Days: len(days), Pace: pace, DailyStartHour: 9, DailyEndHour: 18},
		Days:        days,
	}
}

func TestFeasibilityPass(t *testing.T) {
	trip := tripWith(itinerary.PaceRelaxed,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{block("1", 90, 0), block("2", 120, 21)}},
		itinerary.DayPlan{Day: 2, Blocks: []itinerary.POIBlock{}},
	)

	report := Feasibility(trip)
	require.Equal(t, StatusPass, report.OverallStatus)
	require.Len(t, report.DayResults, 2)
	require.Equal(t, DayFeasibility{
		Day:              1,
		TotalMinutes:     231,
		AvailableMinutes: 540,
		POICount:         2,
		PaceLimit:        3,
		TravelIssues:     []TravelIssue{},
		Status:           StatusPass,
	}, report.DayResults[0])
}

func TestFeasibilityCountCheckFiresIndependently(t *testing.T) {
	var blocks []itinerary.POIBlock
	for i := 0; i < 4; i++ {
		blocks = append(blocks, block(fmt.Sprint(i), 30, 0))
	}
	report := Feasibility(tripWith(itinerary.PaceRelaxed, itinerary.DayPlan{Day: 1, Blocks: blocks}))

	require.Equal(t, StatusFail, report.OverallStatus)
	day := report.DayResults[0]
	require.Equal(t, StatusFail, day.Status)
	require.Equal(t, 4, day.POICount)
	require.Equal(t, 3, day.PaceLimit)
	require.LessOrEqual(t, day.TotalMinutes, day.AvailableMinutes)
	require.Empty(t, day.TravelIssues)
}

func TestFeasibilityBudgetExceeded(t *testing.T) {
	report := Feasibility(tripWith(itinerary.PacePacked,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{block("1", 300, 0), block("2", 250, 10)}},
	))
	require.Equal(t, StatusFail, report.OverallStatus)
	require.Equal(t, 560, report.DayResults[0].TotalMinutes)
}

func TestFeasibilityLongTransfer(t *testing.T) {
	report := Feasibility(tripWith(itinerary.PaceModerate,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{block("1", 60, 0), block("2", 60, 90)}},
		itinerary.DayPlan{Day: 2, Blocks: []itinerary.POIBlock{block("3", 60, 0), block("4", 60, 91)}},
	))

	require.Equal(t, StatusFail, report.OverallStatus)
	require.Equal(t, StatusPass, report.DayResults[0].Status)
	require.Equal(t, StatusFail, report.DayResults[1].Status)
	require.Equal(t, []TravelIssue{{POI: "POI 4", TravelMinutes: 91}}, report.DayResults[1].TravelIssues)
}

func TestFeasibilityEmptyTripPasses(t *testing.T) {
	report := Feasibility(itinerary.TripState{Constraints: itinerary.TripConstraints{Pace: itinerary.PaceRelaxed, DailyStartHour: 9, DailyEndHour: 18}})
	require.Equal(t, StatusPass, report.OverallStatus)
	require.Empty(t, report.DayResults)
}

func TestGroundingPass(t *testing.T) {
	report := Grounding(tripWith(itinerary.PaceRelaxed,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{block("1", 60, 0), block("2", 60, 12)}},
	))
	require.Equal(t, StatusPass, report.OverallStatus)
	require.Equal(t, 2, report.TotalPOIsChecked)
	require.Empty(t, report.IssuesFound)
}

func TestGroundingBadPrefixNamesPOI(t *testing.T) {
	bad := block("1", 60, 0)
	bad.POIID = "gmaps_123"
	bad.Name = "Lodhi Garden"

	report := Grounding(tripWith(itinerary.PaceRelaxed,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{bad, block("2", 60, 10)}},
	))
	require.Equal(t, StatusFail, report.OverallStatus)
	require.Equal(t, []GroundingIssue{{POI: "Lodhi Garden", Issue: "Invalid POI ID format"}}, report.IssuesFound)
}

func TestGroundingCoordinatesAndSource(t *testing.T) {
	missing := block("1", 60, 0)
	missing.Lat, missing.Lon = 0, 0
	nan := block("2", 60, 0)
	nan.Lat = math.NaN()
	unattributed := block("3", 60, 0)
	unattributed.Source = "openstreetmap"

	report := Grounding(tripWith(itinerary.PacePacked,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{missing, nan, unattributed}},
	))
	require.Equal(t, StatusFail, report.OverallStatus)
	require.Equal(t, 3, report.TotalPOIsChecked)
	require.Equal(t, []GroundingIssue{
		{POI: "POI 1", Issue: "Missing coordinates"},
		{POI: "POI 2", Issue: "Missing coordinates"},
		{POI: "POI 3", Issue: "Missing or invalid source attribution"},
	}, report.IssuesFound)
}

func TestGroundingEmptyDayAndTrip(t *testing.T) {
	report := Grounding(tripWith(itinerary.PaceRelaxed,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{block("1", 60, 0)}},
		itinerary.DayPlan{Day: 2},
	))
	require.Equal(t, StatusFail, report.OverallStatus)
	require.Equal(t, []GroundingIssue{{Day: 2, Issue: "No POIs planned for this day."}}, report.IssuesFound)

	empty := Grounding(itinerary.TripState{})
	require.Equal(t, StatusFail, empty.OverallStatus)
	require.Equal(t, 0, empty.TotalPOIsChecked)
	require.Len(t, empty.IssuesFound, 1)
}

func TestEditCorrectness(t *testing.T) {
	before := tripWith(itinerary.PaceRelaxed,
		itinerary.DayPlan{Day: 1, Blocks: []itinerary.POIBlock{block("1", 60, 0)}},
		itinerary.DayPlan{Day: 2, Blocks: []itinerary.POIBlock{block("2", 60, 0)}},
		itinerary.DayPlan{Day: 3, Blocks: []itinerary.POIBlock{block("3", 60, 0)}},
	)

	t.Run("only intended day changed", func(t *testing.T) {
		after := before.Clone()
		after.Days[1].Blocks = []itinerary.POIBlock{block("9", 90, 0)}
		report := EditCorrectness(before, after, 2)
		require.Equal(t, EditReport{ChangedDays: []int{2}, UnexpectedChanges: []int{}, Status: StatusPass}, report)
	})

	t.Run("collateral change fails", func(t *testing.T) {
		after := before.Clone()
		after.Days[1].Blocks = []itinerary.POIBlock{block("9", 90, 0)}
		after.Days[2].Blocks[0].TravelMinutesFromPrevious = 5
		report := EditCorrectness(before, after, 2)
		require.Equal(t, []int{2, 3}, report.ChangedDays)
		require.Equal(t, []int{3}, report.UnexpectedChanges)
		require.Equal(t, StatusFail, report.Status)
	})

	t.Run("no change passes", func(t *testing.T) {
		report := EditCorrectness(before, before.Clone(), 1)
		require.Empty(t, report.ChangedDays)
		require.Equal(t, StatusPass, report.Status)
	})

	t.Run("length drift counts as change", func(t *testing.T) {
		after := before.Clone()
		after.Days = after.Days[:2]
		report := EditCorrectness(before, after, 1)
		require.Equal(t, []int{3}, report.UnexpectedChanges)
		require.Equal(t, StatusFail, report.Status)
	})
}
