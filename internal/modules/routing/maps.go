// README: Google Maps route estimator and geocoder with a straight-line fallback.
package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"ridehail/internal/types"
)

var (
	ErrNoRoute   = errors.New("no route found")
	ErrNoAddress = errors.New("address not found")
)

type mapsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// MapsEstimator handles interactions with Google Maps API.
type MapsEstimator struct {
	client   mapsClient
	fallback Haversine
	log      *slog.Logger
}

// NewMapsEstimator creates a MapsEstimator with the given API Key.
func NewMapsEstimator(apiKey string) (*MapsEstimator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newMapsEstimator(client), nil
}

func newMapsEstimator(client mapsClient) *MapsEstimator {
	return &MapsEstimator{
		client:   client,
		fallback: NewHaversine(),
		log:      slog.Default().With("module", "routing"),
	}
}

// Route asks for a driving route and falls back to the straight-line estimate
// when the API fails or returns nothing.
func (m *MapsEstimator) Route(ctx context.Context, from, to types.Point) (float64, float64, error) {
	km, min, err := m.directions(ctx, from, to)
	if err == nil {
		return km, min, nil
	}
	if ctx.Err() != nil {
		return 0, 0, ctx.Err()
	}
	m.log.Warn("directions failed, using straight-line estimate", "error", err)
	return m.fallback.Route(ctx, from, to)
}

func (m *MapsEstimator) directions(ctx context.Context, from, to types.Point) (float64, float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := m.client.Directions(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, ErrNoRoute
	}

	var meters int
	var minutes float64
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		minutes += leg.Duration.Minutes()
	}
	return float64(meters) / 1000, minutes, nil
}

// Geocode resolves a free-form address to the first match's coordinates.
func (m *MapsEstimator) Geocode(ctx context.Context, address string) (types.Point, error) {
	if address == "" {
		return types.Point{}, ErrNoAddress
	}
	results, err := m.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return types.Point{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, ErrNoAddress
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func latLng(p types.Point) string {
	ll := maps.LatLng{Lat: p.Lat, Lng: p.Lng}
	return ll.String()
}
