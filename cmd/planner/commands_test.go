package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"travel-planner-server/itinerary"
	"travel-planner-server/localstore"
	"travel-planner-server/routes"
	"travel-planner-server/storage"
	"travel-planner-server/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t   *testing.T
	db  string
	api string
}

func newCLI(t *testing.T, api string) *cli {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	if api == "" {
		api = "http://127.0.0.1:1"
	}
	return &cli{t: t, db: filepath.Join(t.TempDir(), "planner.db"), api: api}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-db", c.db, "-api", c.api}, args...), &out)
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) plan() itinerary.Plan {
	c.t.Helper()
	s, err := localstore.Open(c.db)
	require.NoError(c.t, err)
	defer s.Close()
	plan, err := s.LoadPlan()
	require.NoError(c.t, err)
	return plan
}

func (c *cli) backup() (itinerary.Plan, bool) {
	c.t.Helper()
	s, err := localstore.Open(c.db)
	require.NoError(c.t, err)
	defer s.Close()
	plan, ok, err := s.LoadBackup()
	require.NoError(c.t, err)
	return plan, ok
}

func TestCommandRequired(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Usage: planner")
}

func TestAddDayNeedsStartDate(t *testing.T) {
	c := newCLI(t, "")
	_, err := c.run("add-day")
	require.Error(t, err)
	assert.Equal(t, "Please set a start date first", userMessage(err))
	assert.Empty(t, c.plan().Days)
}

func TestOfflineEditing(t *testing.T) {
	c := newCLI(t, "")

	c.mustRun("title", "Paris", "and", "Lyon")
	c.mustRun("dates", "2024-03-01", "2024-03-05")
	for i := 0; i < 3; i++ {
		c.mustRun("add-day")
	}
	out := c.mustRun("add-location", "-time", "10:00", "-lat", "48.8606", "-lng", "2.3376", "3", "Louvre", "Rue", "de", "Rivoli")
	assert.Contains(t, out, "Louvre (Rue de Rivoli)")
	c.mustRun("add-note", "3", "Bring", "tickets")

	c.mustRun("delete-day", "2")
	plan := c.plan()
	assert.Equal(t, "Paris and Lyon", plan.Title)
	require.Len(t, plan.Days, 2)
	assert.Equal(t, 1, plan.Days[0].Number)
	assert.Equal(t, 2, plan.Days[1].Number)
	assert.Equal(t, "Louvre", plan.Days[1].Locations[0].Name)
	assert.Equal(t, "Bring tickets", plan.Days[1].Notes[0].Content)

	out = c.mustRun("show", "-day", "2")
	assert.Contains(t, out, "[showing only this day]")
	assert.Contains(t, out, "Map: 1 marker(s), filtered to one day")

	backup, ok := c.backup()
	require.True(t, ok)
	assert.Equal(t, plan.Title, backup.Title)

	c.mustRun("dates", "2024-04-10", "2024-04-12")
	plan = c.plan()
	assert.Equal(t, "2024-04-11", plan.Days[1].Date)

	out = c.mustRun("export")
	var exported itinerary.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, plan.Days[1].ID, exported.Days[1].ID)

	_, err := c.run("add-location", "1", "Nowhere", "Unknown")
	assert.ErrorIs(t, err, itinerary.ErrNotGeocoded)

	c.mustRun("clear")
	assert.Equal(t, itinerary.EmptyPlan(), c.plan())
}

func startBackend(t *testing.T) string {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "cli-test-secret")

	store, err := storage.OpenGorm(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	storage.Store = store
	mr := miniredis.RunT(t)
	storage.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := iris.New()
	app.Validator = utils.NewValidator()
	routes.RegisterRoutes(app)
	require.NoError(t, app.Build())
	srv := httptest.NewServer(app)

	t.Cleanup(func() {
		srv.Close()
		storage.Redis.Close()
		storage.Redis = nil
		store.Close()
		storage.Store = nil
	})
	return srv.URL
}

func TestRegisterUploadsOfflinePlan(t *testing.T) {
	c := newCLI(t, startBackend(t))

	c.mustRun("title", "Oslo")
	c.mustRun("dates", "2024-06-01", "2024-06-04")
	c.mustRun("add-day")
	_, ok := c.backup()
	require.True(t, ok)

	out := c.mustRun("register", "Ola", "ola@example.com", "secret123")
	assert.Contains(t, out, "Welcome, Ola")
	assert.Contains(t, out, "Uploaded offline plan as ")

	_, ok = c.backup()
	assert.False(t, ok)
	plan := c.plan()
	require.NotEmpty(t, plan.ID)
	assert.Equal(t, "Oslo", plan.Title)
	require.Len(t, plan.Days, 1)

	c.mustRun("add-day")
	assert.Equal(t, plan.ID, c.plan().ID)

	out = c.mustRun("list")
	assert.Equal(t, 1, strings.Count(out, "Oslo"))
	assert.Contains(t, out, "(2 days")
	assert.Contains(t, out, "1 plan(s)")

	out = c.mustRun("whoami")
	assert.Contains(t, out, "ola@example.com")

	c.mustRun("logout")
	_, err := c.run("whoami")
	assert.Equal(t, "Please log in first", userMessage(err))
}

func TestLoginPullsLatestPlan(t *testing.T) {
	api := startBackend(t)
	first := newCLI(t, api)
	first.mustRun("register", "Kim", "kim@example.com", "secret123")
	first.mustRun("title", "Seoul")
	first.mustRun("dates", "2024-09-01", "2024-09-03")
	first.mustRun("add-day")
	remoteID := first.plan().ID
	require.NotEmpty(t, remoteID)

	second := newCLI(t, api)
	out := second.mustRun("login", "kim@example.com", "secret123")
	assert.Contains(t, out, "Logged in as kim@example.com")
	plan := second.plan()
	assert.Equal(t, remoteID, plan.ID)
	assert.Equal(t, "Seoul", plan.Title)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, "2024-09-01", plan.Days[0].Date)
}
