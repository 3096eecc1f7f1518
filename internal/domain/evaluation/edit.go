package evaluation

import "github.com/yanqian/ai-tripplanner/internal/domain/itinerary"

// EditCorrectness diffs two snapshots day by day and fails when anything besides intendedDay moved.
func EditCorrectness(before, after itinerary.TripState, intendedDay int) EditReport {
	report := EditReport{
		ChangedDays:       []int{},
		UnexpectedChanges: []int{},
		Status:            StatusPass,
	}

	n := max(len(before.Days), len(after.Days))
	for i := 0; i < n; i++ {
		if i < len(before.Days) && i < len(after.Days) && before.Days[i].Equal(after.Days[i]) {
			continue
		}
		day := i + 1
		report.ChangedDays = append(report.ChangedDays, day)
		if day != intendedDay {
			report.UnexpectedChanges = append(report.UnexpectedChanges, day)
		}
	}

	if len(report.UnexpectedChanges) > 0 {
		report.Status = StatusFail
	}
	return report
}
