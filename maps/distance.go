package maps

import (
	"math"

	"travel-planner-server/itinerary"
)

// CalculateDistance returns the great-circle distance in kilometers between
// two points using the Haversine formula.
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// DayDistance sums the straight-line legs between a day's geocoded locations
// in visiting order.
func DayDistance(day itinerary.Day) float64 {
	var (
		total float64
		prev  *itinerary.Coordinates
	)
	for _, loc := range day.Locations {
		if loc.Coordinates == nil {
			continue
		}
		if prev != nil {
			total += CalculateDistance(prev.Lat, prev.Lng, loc.Coordinates.Lat, loc.Coordinates.Lng)
		}
		prev = loc.Coordinates
	}
	return total
}
