package models

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrDuplicateDay = errors.New("Day already exists")

// ParseISODate accepts a calendar date or an RFC 3339 timestamp.
func ParseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
	}
	return t, nil
}

func (in DayInput) ToDay() (Day, error) {
	date, err := ParseISODate(in.Date)
	if err != nil {
		return Day{}, err
	}
	day := Day{
		ID:        in.ID,
		Date:      date,
		DayNumber: in.DayNumber,
		Locations: make([]Location, 0, len(in.Locations)),
		Notes:     make([]Note, 0, len(in.Notes)),
	}
	for _, l := range in.Locations {
		loc := Location{ID: l.ID, Name: l.Name, Address: l.Address, Time: l.Time, Notes: l.Notes}
		if l.Coordinates != nil && l.Coordinates.Lat != nil && l.Coordinates.Lng != nil {
			loc.Coordinates = Coordinates{Lat: *l.Coordinates.Lat, Lng: *l.Coordinates.Lng}
		}
		day.Locations = append(day.Locations, loc)
	}
	for _, n := range in.Notes {
		note := Note{ID: n.ID, Content: n.Content}
		if n.Timestamp != "" {
			if ts, err := ParseISODate(n.Timestamp); err == nil {
				note.Timestamp = ts
			}
		}
		day.Notes = append(day.Notes, note)
	}
	return day, nil
}

// DaysFromInput converts a full days array. Day numbers must be unique.
func DaysFromInput(in []DayInput) ([]Day, error) {
	days := make([]Day, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, d := range in {
		if seen[d.DayNumber] {
			return nil, ErrDuplicateDay
		}
		seen[d.DayNumber] = true
		day, err := d.ToDay()
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}
