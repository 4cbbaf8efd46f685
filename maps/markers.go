// Package maps turns a plan into what a map widget needs: geocoded points,
// colored markers, a bounding box and one driving route per day. Geocoding and
// directions go through the Google Maps web services.
package maps

import (
	"strconv"

	"travel-planner-server/itinerary"
)

// MaxZoom caps the zoom level after fitting bounds.
const MaxZoom = 15

var dayColors = []string{"#667eea", "#f093fb", "#4facfe", "#43e97b", "#fa709a", "#ff9a9e", "#a8edea", "#ffecd2"}

// ColorForDay picks the palette entry for a zero-based day index.
func ColorForDay(dayIndex int) string {
	if dayIndex < 0 {
		dayIndex = 0
	}
	return dayColors[dayIndex%len(dayColors)]
}

type Marker struct {
	LocationID string                `json:"locationId"`
	DayID      string                `json:"dayId"`
	Label      string                `json:"label"`
	Title      string                `json:"title"`
	Address    string                `json:"address"`
	Time       string                `json:"time,omitempty"`
	Notes      string                `json:"notes,omitempty"`
	Position   itinerary.Coordinates `json:"position"`
	Color      string                `json:"color"`
}

// Markers builds one marker per geocoded location. With a non-empty
// selectedDayID only that day is shown; labels and colors always follow the
// day's position in the full plan.
func Markers(plan itinerary.Plan, selectedDayID string) []Marker {
	var out []Marker
	for i, day := range plan.Days {
		if selectedDayID != "" && day.ID != selectedDayID {
			continue
		}
		for _, loc := range day.Locations {
			if loc.Coordinates == nil {
				continue
			}
			out = append(out, Marker{
				LocationID: loc.ID,
				DayID:      day.ID,
				Label:      strconv.Itoa(i + 1),
				Title:      loc.Name,
				Address:    loc.Address,
				Time:       loc.Time,
				Notes:      loc.Notes,
				Position:   *loc.Coordinates,
				Color:      ColorForDay(i),
			})
		}
	}
	return out
}

type Bounds struct {
	SouthWest itinerary.Coordinates `json:"southWest"`
	NorthEast itinerary.Coordinates `json:"northEast"`
}

// Center is the midpoint of the box.
func (b Bounds) Center() itinerary.Coordinates {
	return itinerary.Coordinates{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// FitBounds returns the smallest box holding every marker, and false when
// there are none.
func FitBounds(markers []Marker) (Bounds, bool) {
	if len(markers) == 0 {
		return Bounds{}, false
	}
	first := markers[0].Position
	b := Bounds{SouthWest: first, NorthEast: first}
	for _, m := range markers[1:] {
		p := m.Position
		b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)
	}
	return b, true
}
