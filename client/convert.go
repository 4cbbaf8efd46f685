package client

import (
	"time"

	"travel-planner-server/itinerary"
	"travel-planner-server/models"
)

// CreateInput converts the working plan into a create request.
func CreateInput(p itinerary.Plan) models.CreateTravelPlanInput {
	return models.CreateTravelPlanInput{
		Title:       p.Title,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Days:        DayInputs(p.Days),
		IsPublic:    p.IsPublic,
		Tags:        p.Tags,
		Description: p.Description,
	}
}

// UpdateInput converts the working plan into a full-replacement update.
func UpdateInput(p itinerary.Plan) models.UpdateTravelPlanInput {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.UpdateTravelPlanInput{
		Title:       &p.Title,
		StartDate:   &p.StartDate,
		EndDate:     &p.EndDate,
		Days:        DayInputs(p.Days),
		IsPublic:    &p.IsPublic,
		Tags:        tags,
		Description: &p.Description,
	}
}

func DayInputs(days []itinerary.Day) []models.DayInput {
	out := make([]models.DayInput, 0, len(days))
	for _, d := range days {
		out = append(out, DayInput(d))
	}
	return out
}

func DayInput(d itinerary.Day) models.DayInput {
	in := models.DayInput{
		ID:        d.ID,
		Date:      d.Date,
		DayNumber: d.Number,
		Locations: make([]models.LocationInput, 0, len(d.Locations)),
		Notes:     make([]models.NoteInput, 0, len(d.Notes)),
	}
	for _, l := range d.Locations {
		loc := models.LocationInput{ID: l.ID, Name: l.Name, Address: l.Address, Time: l.Time, Notes: l.Notes}
		if l.Coordinates != nil {
			lat, lng := l.Coordinates.Lat, l.Coordinates.Lng
			loc.Coordinates = &models.CoordinatesInput{Lat: &lat, Lng: &lng}
		}
		in.Locations = append(in.Locations, loc)
	}
	for _, n := range d.Notes {
		note := models.NoteInput{ID: n.ID, Content: n.Content}
		if !n.Timestamp.IsZero() {
			note.Timestamp = n.Timestamp.UTC().Format(time.RFC3339)
		}
		in.Notes = append(in.Notes, note)
	}
	return in
}

// FromTravelPlan converts a server plan into the client model.
func FromTravelPlan(tp models.TravelPlan) itinerary.Plan {
	p := itinerary.Plan{
		ID:          tp.ID,
		Title:       tp.Title,
		StartDate:   civilDate(tp.StartDate),
		EndDate:     civilDate(tp.EndDate),
		Days:        make([]itinerary.Day, 0, len(tp.Days)),
		IsPublic:    tp.IsPublic,
		Tags:        append([]string(nil), tp.Tags...),
		Description: tp.Description,
	}
	for _, d := range tp.Days {
		day := itinerary.Day{
			ID:        d.ID,
			Number:    d.DayNumber,
			Date:      civilDate(d.Date),
			Locations: make([]itinerary.Location, 0, len(d.Locations)),
			Notes:     make([]itinerary.Note, 0, len(d.Notes)),
		}
		for _, l := range d.Locations {
			day.Locations = append(day.Locations, itinerary.Location{
				ID:          l.ID,
				Name:        l.Name,
				Address:     l.Address,
				Coordinates: &itinerary.Coordinates{Lat: l.Coordinates.Lat, Lng: l.Coordinates.Lng},
				Time:        l.Time,
				Notes:       l.Notes,
			})
		}
		for _, n := range d.Notes {
			day.Notes = append(day.Notes, itinerary.Note{ID: n.ID, Content: n.Content, Timestamp: n.Timestamp})
		}
		p.Days = append(p.Days, day)
	}
	return p
}

func civilDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(itinerary.DateLayout)
}
