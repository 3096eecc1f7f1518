package itinerary

import (
	"math"
	"slices"
)

// Default daily window when a request leaves the hours unset.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 18
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite and in range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Present reports whether the point was actually set. JSON null decodes to (0,0), which is treated as missing.
func (c Coordinates) Present() bool {
	return c.Valid() && !(c.Lat == 0 && c.Lon == 0)
}

// CandidatePOI is a ranked search result offered to the builder.
type CandidatePOI struct {
	ID                string      `json:"poiId"`
	Name              string      `json:"name"`
	Category          string      `json:"category"`
	Location          Coordinates `json:"location"`
	SuggestedDuration int         `json:"suggestedDuration"`
	Indoor            bool        `json:"indoor"`
	Source            string      `json:"source"`
}

// POIBlock is a placed visit inside a day.
type POIBlock struct {
	POIID                     string  `json:"poiId"`
	Name                      string  `json:"name"`
	Category                  string  `json:"category"`
	Lat                       float64 `json:"lat"`
	Lon                       float64 `json:"lon"`
	DurationMinutes           int     `json:"durationMinutes"`
	TravelMinutesFromPrevious int     `json:"travelMinutesFromPrevious"`
	Indoor                    bool    `json:"indoor"`
	Source                    string  `json:"source"`
}

// Location returns the block's coordinates.
func (b POIBlock) Location() Coordinates {
	return Coordinates{Lat: b.Lat, Lon: b.Lon}
}

// DayPlan is one day of the itinerary. Day is 1-based.
type DayPlan struct {
	Day    int        `json:"day"`
	Blocks []POIBlock `json:"blocks"`
}

// TotalMinutes sums visit and travel time.
func (d DayPlan) TotalMinutes() int {
	total := 0
	for _, b := range d.Blocks {
		total += b.DurationMinutes + b.TravelMinutesFromPrevious
	}
	return total
}

// Equal compares day index and blocks in order.
func (d DayPlan) Equal(other DayPlan) bool {
	return d.Day == other.Day && slices.Equal(d.Blocks, other.Blocks)
}

// Clone copies the block slice.
func (d DayPlan) Clone() DayPlan {
	blocks := make([]POIBlock, len(d.Blocks))
	copy(blocks, d.Blocks)
	return DayPlan{Day: d.Day, Blocks: blocks}
}

// TripConstraints bound how days are packed.
type TripConstraints struct {
	Days           int  `json:"days"`
	Pace           Pace `json:"pace"`
	DailyStartHour int  `json:"dailyStartHour"`
	DailyEndHour   int  `json:"dailyEndHour"`
}

// WithDefaults fills unset hours with the default window.
func (c TripConstraints) WithDefaults() TripConstraints {
	if c.DailyStartHour == 0 && c.DailyEndHour == 0 {
		c.DailyStartHour = DefaultStartHour
		c.DailyEndHour = DefaultEndHour
	}
	return c
}

// AvailableMinutes is the day budget.
func (c TripConstraints) AvailableMinutes() int {
	return (c.DailyEndHour - c.DailyStartHour) * 60
}

// Validate rejects constraints the builder cannot honor.
func (c TripConstraints) Validate() error {
	if c.Days < 1 {
		return validationErrorf("days must be at least 1, got %d", c.Days)
	}
	if !c.Pace.Valid() {
		return validationErrorf("unknown pace %q", c.Pace)
	}
	if c.DailyStartHour < 0 || c.DailyStartHour > 24 || c.DailyEndHour < 0 || c.DailyEndHour > 24 {
		return validationErrorf("daily hours must be within 0..24, got %d..%d", c.DailyStartHour, c.DailyEndHour)
	}
	if c.DailyEndHour <= c.DailyStartHour {
		return validationErrorf("daily end hour %d must be after start hour %d", c.DailyEndHour, c.DailyStartHour)
	}
	return nil
}

// TripState is the full plan for one trip.
type TripState struct {
	City        string          `json:"city"`
	Interests   []string        `json:"interests"`
	Constraints TripConstraints `json:"constraints"`
	Days        []DayPlan       `json:"days"`
}

// Clone returns a deep copy so callers never alias stored state.
func (s TripState) Clone() TripState {
	out := s
	out.Interests = slices.Clone(s.Interests)
	if s.Days != nil {
		out.Days = make([]DayPlan, len(s.Days))
		for i, d := range s.Days {
			out.Days[i] = d.Clone()
		}
	}
	return out
}

// POICount counts placed blocks across all days.
func (s TripState) POICount() int {
	n := 0
	for _, d := range s.Days {
		n += len(d.Blocks)
	}
	return n
}
