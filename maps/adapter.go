package maps

import (
	"context"
	"sync"
	"time"

	"travel-planner-server/itinerary"

	"github.com/rs/zerolog/log"
)

// DailyRoutes requests one route for every shown day that has at least two
// geocoded locations. The route color follows the day number. Days whose
// request fails are logged and left out.
func DailyRoutes(ctx context.Context, router Router, plan itinerary.Plan, selectedDayID string) []Route {
	var routes []Route
	for _, day := range plan.Days {
		if selectedDayID != "" && day.ID != selectedDayID {
			continue
		}
		var points []itinerary.Coordinates
		for _, loc := range day.Locations {
			if loc.Coordinates != nil {
				points = append(points, *loc.Coordinates)
			}
		}
		if len(points) < 2 {
			continue
		}

		r, err := router.Route(ctx, points)
		if err != nil {
			log.Warn().Err(err).Str("pkg", "maps").Str("day", day.ID).Msg("route request failed")
			continue
		}
		r.DayID = day.ID
		r.Color = ColorForDay(day.Number - 1)
		routes = append(routes, r)
	}
	return routes
}

// View is everything the map shows for one plan state.
type View struct {
	Markers   []Marker
	Bounds    Bounds
	HasBounds bool
	Routes    []Route
}

// Adapter keeps the map view in step with the itinerary. It is registered as
// an itinerary observer; Router may be nil to skip route drawing.
type Adapter struct {
	Router  Router
	Timeout time.Duration

	mu       sync.Mutex
	plan     itinerary.Plan
	selected string
	view     View
}

func NewAdapter(router Router) *Adapter {
	return &Adapter{Router: router, Timeout: 10 * time.Second}
}

func (a *Adapter) PlanChanged(plan itinerary.Plan) {
	a.mu.Lock()
	a.plan = plan
	if _, ok := plan.Day(a.selected); !ok {
		a.selected = ""
	}
	a.mu.Unlock()
	a.refresh()
}

// ToggleDay limits the map to one day, or back to all days when that day is
// already selected.
func (a *Adapter) ToggleDay(dayID string) {
	a.mu.Lock()
	if a.selected == dayID {
		a.selected = ""
	} else {
		a.selected = dayID
	}
	a.mu.Unlock()
	a.refresh()
}

func (a *Adapter) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// View returns the most recently computed map state.
func (a *Adapter) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *Adapter) refresh() {
	a.mu.Lock()
	plan, selected := a.plan, a.selected
	a.mu.Unlock()

	v := View{Markers: Markers(plan, selected)}
	v.Bounds, v.HasBounds = FitBounds(v.Markers)
	if a.Router != nil {
		timeout := a.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		v.Routes = DailyRoutes(ctx, a.Router, plan, selected)
		cancel()
	}

	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
}
