package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"travel-planner-server/itinerary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderedPlan() itinerary.Plan {
	return itinerary.Plan{
		ID:        "p1",
		Title:     "Rome",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-03",
		Days: []itinerary.Day{
			{ID: "d1", Number: 1, Date: "2024-03-01", Locations: []itinerary.Location{
				{ID: "l1", Name: "Colosseum", Address: "Piazza del Colosseo", Time: "09:00",
					Coordinates: &itinerary.Coordinates{Lat: 41.8902, Lng: 12.4922}},
				{ID: "l2", Name: "Pantheon", Address: "Piazza della Rotonda", Notes: "Free entry",
					Coordinates: &itinerary.Coordinates{Lat: 41.8986, Lng: 12.4769}},
			}, Notes: []itinerary.Note{{ID: "n1", Content: "Buy Roma Pass", Timestamp: time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC)}}},
			{ID: "d2", Number: 2, Date: "2024-03-02", Locations: []itinerary.Location{}},
		},
	}
}

func TestWriteRendersWholePlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, renderedPlan(), ""))
	out := buf.String()

	assert.Contains(t, out, "== Rome ==")
	assert.Contains(t, out, "Dates: 2024-03-01 to 2024-03-03")
	assert.Contains(t, out, "Day 1 - Fri, Mar 1")
	assert.Contains(t, out, "Day 2 - Sat, Mar 2")
	assert.Contains(t, out, "  1. Colosseum (Piazza del Colosseo)")
	assert.Contains(t, out, "     at 09:00")
	assert.Contains(t, out, "     Free entry")
	assert.Contains(t, out, "  * Buy Roma Pass [")
	assert.Contains(t, out, "Distance: 1.6 km")
	assert.Contains(t, out, "Map: 2 marker(s)")
	assert.Contains(t, out, "[1 #667eea] Colosseum @ 41.89020,12.49220")
	assert.NotContains(t, out, "showing only this day")
}

func TestWriteEmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, itinerary.EmptyPlan(), ""))
	out := buf.String()
	assert.Contains(t, out, "== My Travel Plan ==")
	assert.Contains(t, out, "Dates: not set")
	assert.Contains(t, out, "No days yet.")
	assert.Contains(t, out, "Map: 0 marker(s)")
}

func TestRendererRerendersOnEveryChange(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	it := itinerary.New(renderedPlan(), nil)
	it.Subscribe(r)
	assert.Equal(t, 1, strings.Count(buf.String(), "== Rome =="))

	_, err := it.AddDay()
	require.NoError(t, err)
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "== Rome =="))
	assert.Contains(t, out, "Day 3 - Sun, Mar 3")
}

func TestRendererToggleDay(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.PlanChanged(renderedPlan())

	buf.Reset()
	r.ToggleDay("d2")
	out := buf.String()
	assert.Contains(t, out, "Day 2 - Sat, Mar 2 [showing only this day]")
	assert.Contains(t, out, "Map: 0 marker(s), filtered to one day")

	buf.Reset()
	r.ToggleDay("d2")
	assert.Contains(t, buf.String(), "Map: 2 marker(s)\n")

	r.ToggleDay("d1")
	plan := renderedPlan()
	plan.Days = plan.Days[1:]
	buf.Reset()
	r.PlanChanged(plan)
	assert.NotContains(t, buf.String(), "filtered to one day")
}
