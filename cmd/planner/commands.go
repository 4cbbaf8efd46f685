package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"travel-planner-server/client"
	"travel-planner-server/itinerary"
	"travel-planner-server/localstore"
	"travel-planner-server/maps"
	"travel-planner-server/view"

	"github.com/rs/zerolog/log"
)

const usage = `Usage: planner [flags] <command> [args]

Trip editing (works offline):
  show [-day N]                         Print the plan, optionally one day only
  title <text>                          Rename the trip
  dates <start> [end]                   Set the trip dates (YYYY-MM-DD)
  add-day                               Append the next day
  add-location [-time T] [-notes N] [-lat X -lng Y] <day> <name> <address>
  add-note <day> <text>
  delete-day <day>
  delete-location <day> <location-id>
  delete-note <day> <note-id>
  new-trip                              Start a fresh trip today
  clear                                 Reset to an empty plan
  export [file]                         Write the plan as JSON

Account and sync:
  register <name> <email> <password>
  login <email> <password>
  logout
  whoami
  save                                  Push the plan to the server now
  sync                                  Upload the offline backup
  pull                                  Load the latest plan from the server
  list [-page N] [-limit N] [-search S]
  delete-remote <plan-id>`

type Config struct {
	APIURL     string
	DBPath     string
	MapsAPIKey string
}

func parseGlobal(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiURL := fs.String("api", envOr("PLANNER_API_URL", "http://localhost:4000"), "Backend base URL")
	dbPath := fs.String("db", envOr("PLANNER_DB", "planner.db"), "Local store file")
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w\n\n%s", err, usage)
	}
	if fs.NArg() == 0 {
		return nil, nil, fmt.Errorf("command required\n\n%s", usage)
	}
	return &Config{
		APIURL:     *apiURL,
		DBPath:     *dbPath,
		MapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
	}, fs.Args(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// app wires the local store, itinerary, renderer, map adapter and sync
// client for one invocation.
type app struct {
	out      io.Writer
	store    *localstore.Store
	client   *client.Client
	syncer   *client.Syncer
	it       *itinerary.Itinerary
	renderer *view.Renderer
	mapView  *maps.Adapter
	geocoder maps.Geocoder
	now      func() time.Time
}

func newApp(cfg *Config, out io.Writer) (*app, error) {
	store, err := localstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	c, err := client.NewClient(cfg.APIURL, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &app{
		out:      out,
		store:    store,
		client:   c,
		syncer:   client.NewSyncer(c, store),
		renderer: view.NewRenderer(out),
		now:      time.Now,
	}

	var router maps.Router
	if cfg.MapsAPIKey != "" {
		gc, err := maps.NewGoogleClient(cfg.MapsAPIKey)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("maps client: %w", err)
		}
		a.geocoder = maps.GoogleGeocoder{Client: gc}
		router = maps.GoogleRouter{Client: gc}
	}
	a.mapView = maps.NewAdapter(router)

	plan, err := store.LoadPlan()
	if err != nil {
		log.Warn().Err(err).Msg("could not read local plan")
	}
	a.it = itinerary.New(plan, store, a.renderer)
	a.it.Subscribe(a.mapView)
	c.OnSessionExpired = a.reload
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// reload drops in-memory state after the session ended and starts again from
// what is on disk.
func (a *app) reload() {
	fmt.Fprintln(a.out, "Session expired, please log in again.")
	plan, err := a.store.LoadPlan()
	if err != nil {
		log.Warn().Err(err).Msg("could not read local plan")
	}
	if err := a.it.Replace(plan); err != nil {
		log.Warn().Err(err).Msg("reload failed")
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, rest, err := parseGlobal(args)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, out)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.dispatch(ctx, rest[0], rest[1:])
}

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "show":
		return a.show(args)
	case "title":
		if len(args) == 0 {
			return errors.New("usage: title <text>")
		}
		return a.edit(ctx, a.it.SetTitle(strings.Join(args, " ")))
	case "dates":
		if len(args) == 0 || len(args) > 2 {
			return errors.New("usage: dates <start> [end]")
		}
		end := ""
		if len(args) == 2 {
			end = args[1]
		}
		return a.edit(ctx, a.it.UpdateDates(args[0], end))
	case "add-day":
		day, err := a.it.AddDay()
		if err == nil {
			fmt.Fprintf(a.out, "Added day %d (%s)\n", day.Number, day.Date)
		}
		return a.edit(ctx, err)
	case "add-location":
		return a.addLocation(ctx, args)
	case "add-note":
		if len(args) < 2 {
			return errors.New("usage: add-note <day> <text>")
		}
		dayID, err := a.dayID(args[0])
		if err != nil {
			return err
		}
		_, err = a.it.AddNote(dayID, strings.Join(args[1:], " "))
		return a.edit(ctx, err)
	case "delete-day":
		if len(args) != 1 {
			return errors.New("usage: delete-day <day>")
		}
		dayID, err := a.dayID(args[0])
		if err != nil {
			return err
		}
		return a.edit(ctx, a.it.DeleteDay(dayID))
	case "delete-location", "delete-note":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <day> <id>", name)
		}
		dayID, err := a.dayID(args[0])
		if err != nil {
			return err
		}
		if name == "delete-location" {
			return a.edit(ctx, a.it.DeleteLocation(dayID, args[1]))
		}
		return a.edit(ctx, a.it.DeleteNote(dayID, args[1]))
	case "new-trip":
		_, err := a.it.NewTrip(a.now())
		return a.edit(ctx, err)
	case "clear":
		return a.edit(ctx, a.it.Reset())
	case "export":
		return a.export(args)
	case "register":
		if len(args) != 3 {
			return errors.New("usage: register <name> <email> <password>")
		}
		res, err := a.client.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Welcome, %s\n", res.User.Name)
		return a.afterLogin(ctx)
	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <password>")
		}
		res, err := a.client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Logged in as %s\n", res.User.Email)
		return a.afterLogin(ctx)
	case "logout":
		if err := a.client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "whoami":
		user, err := a.client.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
		return nil
	case "save":
		return a.save(ctx)
	case "sync":
		id, err := a.syncer.SyncLocalData(ctx)
		if err != nil {
			return err
		}
		if id != "" {
			fmt.Fprintf(a.out, "Uploaded offline plan as %s\n", id)
		}
		return nil
	case "pull":
		plan, err := a.syncer.LoadLatest(ctx)
		if err != nil {
			return err
		}
		return a.it.Replace(plan)
	case "list":
		return a.list(ctx, args)
	case "delete-remote":
		if len(args) != 1 {
			return errors.New("usage: delete-remote <plan-id>")
		}
		if err := a.client.DeletePlan(ctx, args[0]); err != nil {
			return err
		}
		if a.it.Snapshot().ID == args[0] {
			return a.it.SetRemoteID("")
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n\n%s", name, usage)
	}
}

// edit finishes a mutating command. The renderer has already printed the new
// state; the plan is then pushed through AutoSave.
func (a *app) edit(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if err := a.save(ctx); err != nil {
		return err
	}
	a.printRoutes()
	return nil
}

func (a *app) printRoutes() {
	for _, r := range a.mapView.View().Routes {
		fmt.Fprintf(a.out, "Route %s: %.1f km, %s\n", r.Color, float64(r.Meters)/1000, r.Duration.Round(time.Minute))
	}
}

func (a *app) save(ctx context.Context) error {
	res, err := a.syncer.AutoSave(ctx, a.it.Snapshot())
	if err != nil {
		return err
	}
	if res.RemoteID != "" {
		return a.it.SetRemoteID(res.RemoteID)
	}
	return nil
}

func (a *app) afterLogin(ctx context.Context) error {
	id, err := a.syncer.SyncLocalData(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("offline plan not uploaded")
	}
	if id != "" {
		fmt.Fprintf(a.out, "Uploaded offline plan as %s\n", id)
	}
	plan, err := a.syncer.LoadLatest(ctx)
	if err != nil {
		return err
	}
	return a.it.Replace(plan)
}

func (a *app) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	day := fs.Int("day", 0, "Show only this day")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan := a.it.Snapshot()
	selected := ""
	if *day > 0 {
		id, err := a.dayID(strconv.Itoa(*day))
		if err != nil {
			return err
		}
		selected = id
	}
	if err := view.Write(a.out, plan, selected); err != nil {
		return err
	}
	if selected != a.mapView.Selected() {
		a.mapView.ToggleDay(selected)
	}
	a.printRoutes()
	return nil
}

func (a *app) addLocation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-location", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	at := fs.String("time", "", "Visit time")
	notes := fs.String("notes", "", "Notes")
	lat := fs.Float64("lat", 0, "Latitude, skips geocoding together with -lng")
	lng := fs.Float64("lng", 0, "Longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return errors.New("usage: add-location [-time T] [-notes N] [-lat X -lng Y] <day> <name> <address>")
	}
	dayID, err := a.dayID(fs.Arg(0))
	if err != nil {
		return err
	}

	loc := itinerary.Location{
		Name:    fs.Arg(1),
		Address: strings.Join(fs.Args()[2:], " "),
		Time:    *at,
		Notes:   *notes,
	}
	manual := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lng" {
			manual = true
		}
	})
	switch {
	case manual:
		loc.Coordinates = &itinerary.Coordinates{Lat: *lat, Lng: *lng}
	case a.geocoder != nil:
		place, err := a.geocoder.Geocode(ctx, loc.Address)
		if err != nil {
			return err
		}
		loc.Coordinates = &place.Coordinates
	}

	_, err = a.it.AddLocation(dayID, loc)
	return a.edit(ctx, err)
}

func (a *app) export(args []string) error {
	plan := a.it.Snapshot()
	if len(args) == 0 {
		return plan.Export(a.out)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := plan.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", 1, "Page")
	limit := fs.Int("limit", 10, "Page size")
	search := fs.String("search", "", "Title or description filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.ListPlans(ctx, client.ListOptions{Page: *page, Limit: *limit, Search: *search})
	if err != nil {
		return err
	}
	for _, p := range res.TravelPlans {
		fmt.Fprintf(a.out, "%s  %s  (%d days, updated %s)\n", p.ID, p.Title, len(p.Days), p.UpdatedAt.Format(time.DateOnly))
	}
	fmt.Fprintf(a.out, "page %d of %d, %d plan(s)\n", res.Pagination.Page, res.Pagination.Pages, res.Pagination.Total)
	return nil
}

// dayID resolves a 1-based day number to the day's id.
func (a *app) dayID(arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "", fmt.Errorf("day must be a number, got %q", arg)
	}
	for _, d := range a.it.Snapshot().Days {
		if d.Number == n {
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("day %d: %w", n, itinerary.ErrDayNotFound)
}

// userMessage turns known errors into the messages shown to the user.
func userMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, itinerary.ErrNoStartDate):
		return "Please set a start date first"
	case errors.Is(err, itinerary.ErrNotGeocoded):
		return "Could not locate that address; set GOOGLE_MAPS_API_KEY or pass -lat and -lng"
	case errors.Is(err, client.ErrSessionExpired):
		return "Session expired, please log in again"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "Please log in first"
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		for _, fe := range apiErr.Errors {
			msg += "\n  " + fe.Field + ": " + fe.Message
		}
		return msg
	default:
		return err.Error()
	}
}
