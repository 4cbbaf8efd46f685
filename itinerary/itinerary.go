package itinerary

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Persister receives a full copy of the plan after every mutation.
type Persister interface {
	SavePlan(plan Plan) error
}

// Observer is notified after the plan has been persisted.
type Observer interface {
	PlanChanged(plan Plan)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(plan Plan)

func (f ObserverFunc) PlanChanged(plan Plan) { f(plan) }

type Itinerary struct {
	mu        sync.Mutex
	plan      Plan
	store     Persister
	observers []Observer
	now       func() time.Time
}

// New wraps plan. store may be nil, in which case mutations only notify.
func New(plan Plan, store Persister, observers ...Observer) *Itinerary {
	if plan.Days == nil {
		plan.Days = []Day{}
	}
	return &Itinerary{
		plan:      plan,
		store:     store,
		observers: observers,
		now:       time.Now,
	}
}

// Subscribe adds an observer and immediately sends it the current plan.
func (it *Itinerary) Subscribe(o Observer) {
	it.mu.Lock()
	it.observers = append(it.observers, o)
	snapshot := it.plan.Clone()
	it.mu.Unlock()
	o.PlanChanged(snapshot)
}

// Snapshot returns a deep copy of the current plan.
func (it *Itinerary) Snapshot() Plan {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.plan.Clone()
}

// mutate applies fn under the lock. When fn succeeds the new state is
// persisted and broadcast; when it fails nothing is written or rendered.
func (it *Itinerary) mutate(fn func(p *Plan) error) error {
	it.mu.Lock()
	if err := fn(&it.plan); err != nil {
		it.mu.Unlock()
		return err
	}
	snapshot := it.plan.Clone()
	observers := slices.Clone(it.observers)
	it.mu.Unlock()

	if it.store != nil {
		if err := it.store.SavePlan(snapshot); err != nil {
			log.Error().Err(err).Str("pkg", "itinerary").Msg("saving plan locally failed")
		}
	}
	for _, o := range observers {
		o.PlanChanged(snapshot)
	}
	return nil
}

// AddDay appends day N+1 dated StartDate+N.
func (it *Itinerary) AddDay() (Day, error) {
	var day Day
	err := it.mutate(func(p *Plan) error {
		if p.StartDate == "" {
			return ErrNoStartDate
		}
		number := len(p.Days) + 1
		date, err := AddDays(p.StartDate, number-1)
		if err != nil {
			return err
		}
		day = Day{
			ID:        uuid.NewString(),
			Number:    number,
			Date:      date,
			Locations: []Location{},
			Notes:     []Note{},
		}
		p.Days = append(p.Days, day)
		return nil
	})
	return day, err
}

// AddLocation appends an already geocoded location to a day.
func (it *Itinerary) AddLocation(dayID string, loc Location) (Location, error) {
	if loc.Coordinates == nil {
		return Location{}, ErrNotGeocoded
	}
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	err := it.mutate(func(p *Plan) error {
		d := p.dayIndex(dayID)
		if d < 0 {
			return ErrDayNotFound
		}
		p.Days[d].Locations = append(p.Days[d].Locations, loc)
		return nil
	})
	if err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (it *Itinerary) AddNote(dayID, content string) (Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Note{}, ErrEmptyNote
	}
	note := Note{ID: uuid.NewString(), Content: content, Timestamp: it.now().UTC()}
	err := it.mutate(func(p *Plan) error {
		d := p.dayIndex(dayID)
		if d < 0 {
			return ErrDayNotFound
		}
		if p.Days[d].Notes == nil {
			p.Days[d].Notes = []Note{}
		}
		p.Days[d].Notes = append(p.Days[d].Notes, note)
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// DeleteDay removes a day and renumbers the remaining days 1..N.
func (it *Itinerary) DeleteDay(dayID string) error {
	return it.mutate(func(p *Plan) error {
		d := p.dayIndex(dayID)
		if d < 0 {
			return ErrDayNotFound
		}
		p.Days = slices.Delete(p.Days, d, d+1)
		for i := range p.Days {
			p.Days[i].Number = i + 1
		}
		return nil
	})
}

func (it *Itinerary) DeleteLocation(dayID, locationID string) error {
	return it.mutate(func(p *Plan) error {
		d := p.dayIndex(dayID)
		if d < 0 {
			return ErrDayNotFound
		}
		l := slices.IndexFunc(p.Days[d].Locations, func(loc Location) bool { return loc.ID == locationID })
		if l < 0 {
			return ErrLocationNotFound
		}
		p.Days[d].Locations = slices.Delete(p.Days[d].Locations, l, l+1)
		return nil
	})
}

func (it *Itinerary) DeleteNote(dayID, noteID string) error {
	return it.mutate(func(p *Plan) error {
		d := p.dayIndex(dayID)
		if d < 0 {
			return ErrDayNotFound
		}
		n := slices.IndexFunc(p.Days[d].Notes, func(note Note) bool { return note.ID == noteID })
		if n < 0 {
			return ErrNoteNotFound
		}
		p.Days[d].Notes = slices.Delete(p.Days[d].Notes, n, n+1)
		return nil
	})
}

// UpdateDates stores the trip range. A non-empty start re-derives every day's
// date from its position, overwriting any per-day dates.
func (it *Itinerary) UpdateDates(start, end string) error {
	for _, s := range []string{start, end} {
		if s == "" {
			continue
		}
		if _, err := ParseDate(s); err != nil {
			return err
		}
	}
	return it.mutate(func(p *Plan) error {
		p.StartDate, p.EndDate = start, end
		if start == "" {
			return nil
		}
		for i := range p.Days {
			p.Days[i].Date, _ = AddDays(start, i)
		}
		return nil
	})
}

func (it *Itinerary) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return it.mutate(func(p *Plan) error {
		p.Title = title
		return nil
	})
}

// SetRemoteID attaches the backend id so later saves become updates.
func (it *Itinerary) SetRemoteID(id string) error {
	return it.mutate(func(p *Plan) error {
		p.ID = id
		return nil
	})
}

// Reset clears the workspace back to an empty plan.
func (it *Itinerary) Reset() error {
	return it.mutate(func(p *Plan) error {
		*p = EmptyPlan()
		return nil
	})
}

// NewTrip clears the workspace and starts a trip today with its first day.
func (it *Itinerary) NewTrip(today time.Time) (Day, error) {
	start := today.Format(DateLayout)
	var day Day
	err := it.mutate(func(p *Plan) error {
		*p = EmptyPlan()
		p.StartDate = start
		day = Day{ID: uuid.NewString(), Number: 1, Date: start, Locations: []Location{}, Notes: []Note{}}
		p.Days = append(p.Days, day)
		return nil
	})
	return day, err
}

// Replace swaps in a plan loaded from elsewhere, typically the backend. The
// server does not keep day numbers contiguous, so days are renumbered 1..N in
// their stored order.
func (it *Itinerary) Replace(plan Plan) error {
	plan = plan.Clone()
	slices.SortStableFunc(plan.Days, func(a, b Day) int { return a.Number - b.Number })
	for i := range plan.Days {
		plan.Days[i].Number = i + 1
	}
	return it.mutate(func(p *Plan) error {
		*p = plan
		return nil
	})
}

func (p *Plan) dayIndex(id string) int {
	return slices.IndexFunc(p.Days, func(d Day) bool { return d.ID == id })
}
