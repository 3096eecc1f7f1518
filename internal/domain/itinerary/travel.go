package itinerary

import "math"

const (
	earthRadiusKm     = 6371.0
	avgCitySpeedKmh   = 25.0
	trafficBufferMins = 10
)

// TravelEstimate is the outcome of EstimateTravel.
type TravelEstimate struct {
	DistanceKm float64 `json:"distanceKm"`
	Minutes    int     `json:"estimatedTravelMinutes"`
}

// EstimateTravel converts great-circle distance into urban travel minutes.
// Minutes are truncated and always include the traffic buffer.
func EstimateTravel(from, to Coordinates) (TravelEstimate, error) {
	if !from.Valid() {
		return TravelEstimate{}, validationErrorf("invalid origin coordinates (%v, %v)", from.Lat, from.Lon)
	}
	if !to.Valid() {
		return TravelEstimate{}, validationErrorf("invalid destination coordinates (%v, %v)", to.Lat, to.Lon)
	}
	// canonical order keeps the float arithmetic identical in both directions
	if to.Lat < from.Lat || (to.Lat == from.Lat && to.Lon < from.Lon) {
		from, to = to, from
	}
	distance := haversineKm(from, to)
	minutes := int(distance/avgCitySpeedKmh*60) + trafficBufferMins
	return TravelEstimate{
		DistanceKm: math.Round(distance*100) / 100,
		Minutes:    minutes,
	}, nil
}

func haversineKm(a, b Coordinates) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
