// Package itinerary holds the in-memory trip being edited. Every mutation goes
// through Itinerary, which persists the full plan and then notifies observers.
package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	DefaultTitle = "My Travel Plan"
)

var (
	ErrNoStartDate      = errors.New("please set a start date first")
	ErrNotGeocoded      = errors.New("location has no coordinates")
	ErrDayNotFound      = errors.New("day not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrEmptyNote        = errors.New("note content is empty")
	ErrInvalidDate      = errors.New("date must be formatted YYYY-MM-DD")
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Time        string       `json:"time,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Day struct {
	ID        string     `json:"id"`
	Number    int        `json:"number"`
	Date      string     `json:"date"`
	Locations []Location `json:"locations"`
	Notes     []Note     `json:"notes,omitempty"`
}

// Plan is the client-side trip document. ID is empty until the backend has
// accepted a create for it.
type Plan struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Days        []Day    `json:"days"`
	IsPublic    bool     `json:"isPublic,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// EmptyPlan is the plan a fresh or cleared workspace starts from.
func EmptyPlan() Plan {
	return Plan{Title: DefaultTitle, Days: []Day{}}
}

// Clone returns a deep copy so observers and stores never share slices with
// the live model.
func (p Plan) Clone() Plan {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.Days = make([]Day, len(p.Days))
	for i, d := range p.Days {
		out.Days[i] = d.clone()
	}
	return out
}

func (d Day) clone() Day {
	out := d
	out.Locations = make([]Location, len(d.Locations))
	for i, l := range d.Locations {
		if l.Coordinates != nil {
			c := *l.Coordinates
			l.Coordinates = &c
		}
		out.Locations[i] = l
	}
	if d.Notes != nil {
		out.Notes = append([]Note(nil), d.Notes...)
	}
	return out
}

// Day returns the day with the given id.
func (p Plan) Day(id string) (Day, bool) {
	for _, d := range p.Days {
		if d.ID == id {
			return d, true
		}
	}
	return Day{}, false
}

// HasDayNumber reports whether a day with that number is already on the plan.
func (p Plan) HasDayNumber(n int) bool {
	for _, d := range p.Days {
		if d.Number == n {
			return true
		}
	}
	return false
}

// Export writes the plan as indented JSON.
func (p Plan) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ParseDate parses a civil date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AddDays returns the civil date offset days after start.
func AddDays(start string, offset int) (string, error) {
	t, err := ParseDate(start)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, offset).Format(DateLayout), nil
}
