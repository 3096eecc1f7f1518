package itinerary

// Build packs candidates into days in a single forward pass.
//
// Candidates are consumed strictly in order: when the next candidate does not fit the
// remaining budget the day is closed and that candidate opens the following day.
// Nothing is reordered or skipped, so a short POI further down the list never jumps ahead.
// Days left over once candidates run out are returned empty.
func Build(candidates []CandidatePOI, constraints TripConstraints) ([]DayPlan, error) {
	if err := constraints.Validate(); err != nil {
		return nil, err
	}
	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}

	available := constraints.AvailableMinutes()
	limit := constraints.Pace.Limit()
	days := make([]DayPlan, 0, constraints.Days)
	next := 0

	for day := 1; day <= constraints.Days; day++ {
		blocks := make([]POIBlock, 0, limit)
		total := 0
		var last *CandidatePOI

		for len(blocks) < limit && next < len(candidates) {
			candidate := candidates[next]
			travel := 0
			if last != nil {
				est, err := EstimateTravel(last.Location, candidate.Location)
				if err != nil {
					return nil, err
				}
				travel = est.Minutes
			}
			projected := total + travel + candidate.SuggestedDuration
			if projected > available {
				break
			}
			blocks = append(blocks, newBlock(candidate, travel))
			total = projected
			last = &candidates[next]
			next++
		}

		days = append(days, DayPlan{Day: day, Blocks: blocks})
	}
	return days, nil
}

func validateCandidates(candidates []CandidatePOI) error {
	for i, c := range candidates {
		if !c.Location.Valid() {
			return validationErrorf("candidate %d (%s) has invalid coordinates (%v, %v)", i, c.ID, c.Location.Lat, c.Location.Lon)
		}
		if c.SuggestedDuration <= 0 {
			return validationErrorf("candidate %d (%s) has non-positive duration %d", i, c.ID, c.SuggestedDuration)
		}
	}
	return nil
}

func newBlock(c CandidatePOI, travel int) POIBlock {
	return POIBlock{
		POIID:                     c.ID,
		Name:                      c.Name,
		Category:                  c.Category,
		Lat:                       c.Location.Lat,
		Lon:                       c.Location.Lon,
		DurationMinutes:           c.SuggestedDuration,
		TravelMinutesFromPrevious: travel,
		Indoor:                    c.Indoor,
		Source:                    c.Source,
	}
}
