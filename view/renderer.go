// Package view renders the itinerary as text. Every change re-renders the whole
// plan; there is no incremental update.
package view

import (
	"fmt"
	"io"
	"sync"
	"text/template"
	"time"

	"travel-planner-server/itinerary"
	"travel-planner-server/maps"

	"github.com/rs/zerolog/log"
)

const planTemplate = `== {{.Plan.Title}} ==
{{if .Plan.StartDate}}Dates: {{.Plan.StartDate}}{{if .Plan.EndDate}} to {{.Plan.EndDate}}{{end}}{{else}}Dates: not set{{end}}
{{- if .Plan.ID}}
Saved as {{.Plan.ID}}{{end}}
{{- if not .Days}}

No days yet.
{{- end}}
{{- range .Days}}

Day {{.Day.Number}} - {{formatDate .Day.Date}}{{if .Selected}} [showing only this day]{{end}}
{{- range $i, $loc := .Day.Locations}}
  {{inc $i}}. {{$loc.Name}} ({{$loc.Address}})
{{- if $loc.Time}}
     at {{$loc.Time}}{{end}}
{{- if $loc.Notes}}
     {{$loc.Notes}}{{end}}
{{- end}}
{{- range .Day.Notes}}
  * {{.Content}} [{{formatTimestamp .Timestamp}}]
{{- end}}
{{- if gt .Distance 0.0}}
  Distance: {{printf "%.1f" .Distance}} km{{end}}
{{- end}}

Map: {{len .Markers}} marker(s){{if .Selected}}, filtered to one day{{end}}
{{- range .Markers}}
  [{{.Label}} {{.Color}}] {{.Title}} @ {{printf "%.5f,%.5f" .Position.Lat .Position.Lng}}
{{- end}}
`

var tmpl = template.Must(template.New("plan").Funcs(template.FuncMap{
	"formatDate":      formatDate,
	"formatTimestamp": formatTimestamp,
	"inc":             func(i int) int { return i + 1 },
}).Parse(planTemplate))

type dayView struct {
	Day      itinerary.Day
	Selected bool
	Distance float64
}

type planView struct {
	Plan     itinerary.Plan
	Days     []dayView
	Markers  []maps.Marker
	Selected bool
}

// Renderer writes the full plan to Out on every change.
type Renderer struct {
	Out io.Writer

	mu       sync.Mutex
	plan     itinerary.Plan
	selected string
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{Out: out}
}

func (r *Renderer) PlanChanged(plan itinerary.Plan) {
	r.mu.Lock()
	r.plan = plan
	if _, ok := plan.Day(r.selected); !ok {
		r.selected = ""
	}
	r.mu.Unlock()
	r.Render()
}

// ToggleDay shows only dayID, or every day again when it is already shown
// alone.
func (r *Renderer) ToggleDay(dayID string) {
	r.mu.Lock()
	if r.selected == dayID {
		r.selected = ""
	} else {
		r.selected = dayID
	}
	r.mu.Unlock()
	r.Render()
}

// Render writes the current plan. Failures are logged; rendering never
// interrupts editing.
func (r *Renderer) Render() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := Write(r.Out, r.plan, r.selected); err != nil {
		log.Error().Err(err).Str("pkg", "view").Msg("render failed")
	}
}

// Write renders plan once. A non-empty selectedDayID limits the map section
// to that day and marks it in the list.
func Write(w io.Writer, plan itinerary.Plan, selectedDayID string) error {
	pv := planView{
		Plan:     plan,
		Markers:  maps.Markers(plan, selectedDayID),
		Selected: selectedDayID != "",
	}
	for _, d := range plan.Days {
		pv.Days = append(pv.Days, dayView{
			Day:      d,
			Selected: d.ID == selectedDayID,
			Distance: maps.DayDistance(d),
		})
	}
	if err := tmpl.Execute(w, pv); err != nil {
		return fmt.Errorf("render plan: %w", err)
	}
	return nil
}

func formatDate(s string) string {
	t, err := itinerary.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("Mon, Jan 2")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 3:04 PM")
}
