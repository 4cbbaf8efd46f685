package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-planner-server/itinerary"

	gmaps "googlemaps.github.io/maps"
)

var (
	ErrNoResults  = errors.New("no results for address")
	ErrEmptyRoute = errors.New("route needs at least two points")
)

// Place is a geocoded address.
type Place struct {
	FormattedAddress string
	Coordinates      itinerary.Coordinates
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Place, error)
}

// Route is one computed driving route.
type Route struct {
	DayID    string
	Color    string
	Meters   int
	Duration time.Duration
	Polyline string
}

type Router interface {
	// Route computes a driving route through points in order.
	Route(ctx context.Context, points []itinerary.Coordinates) (Route, error)
}

// NewGoogleClient builds the web-services client shared by GoogleGeocoder and
// GoogleRouter.
func NewGoogleClient(apiKey string, opts ...gmaps.ClientOption) (*gmaps.Client, error) {
	return gmaps.NewClient(append([]gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}, opts...)...)
}

type GoogleGeocoder struct {
	Client *gmaps.Client
}

func (g GoogleGeocoder) Geocode(ctx context.Context, address string) (Place, error) {
	results, err := g.Client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%w: %q", ErrNoResults, address)
	}
	loc := results[0].Geometry.Location
	return Place{
		FormattedAddress: results[0].FormattedAddress,
		Coordinates:      itinerary.Coordinates{Lat: loc.Lat, Lng: loc.Lng},
	}, nil
}

type GoogleRouter struct {
	Client *gmaps.Client
}

// Route asks the Directions API for a driving route from the first point to
// the last, with the points in between as waypoints.
func (g GoogleRouter) Route(ctx context.Context, points []itinerary.Coordinates) (Route, error) {
	if len(points) < 2 {
		return Route{}, ErrEmptyRoute
	}
	req := &gmaps.DirectionsRequest{
		Origin:      latLng(points[0]),
		Destination: latLng(points[len(points)-1]),
		Mode:        gmaps.TravelModeDriving,
	}
	for _, p := range points[1 : len(points)-1] {
		req.Waypoints = append(req.Waypoints, latLng(p))
	}

	routes, _, err := g.Client.Directions(ctx, req)
	if err != nil {
		return Route{}, err
	}
	if len(routes) == 0 {
		return Route{}, ErrNoResults
	}

	r := Route{Polyline: routes[0].OverviewPolyline.Points}
	for _, leg := range routes[0].Legs {
		r.Meters += leg.Distance.Meters
		r.Duration += leg.Duration
	}
	return r, nil
}

func latLng(c itinerary.Coordinates) string {
	return (&gmaps.LatLng{Lat: c.Lat, Lng: c.Lng}).String()
}
