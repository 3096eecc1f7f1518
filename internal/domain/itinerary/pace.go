package itinerary

import "strings"

// Pace names how busy a day may be.
type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceModerate Pace = "moderate"
	PacePacked   Pace = "packed"
)

var paceLimits = map[Pace]int{
	PaceRelaxed:  3,
	PaceModerate: 4,
	PacePacked:   5,
}

// fallbackPaceLimit applies to paces that slipped past validation, e.g. stored by an older build.
const fallbackPaceLimit = 3

// ParsePace normalizes user input into a known Pace.
func ParsePace(raw string) (Pace, error) {
	p := Pace(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", validationErrorf("pace must be one of relaxed, moderate or packed, got %q", raw)
	}
	return p, nil
}

// Valid reports whether p is a known tier.
func (p Pace) Valid() bool {
	_, ok := paceLimits[p]
	return ok
}

// Limit is the maximum number of POIs per day.
func (p Pace) Limit() int {
	if limit, ok := paceLimits[p]; ok {
		return limit
	}
	return fallbackPaceLimit
}
