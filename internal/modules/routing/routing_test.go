// README: Route estimator tests (straight-line scaling, maps fallback, geocoding).
package routing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"googlemaps.github.io/maps"

	"ridehail/internal/types"
)

var (
	taipei101   = types.Point{Lat: 25.0340, Lng: 121.5645}
	mainStation = types.Point{Lat: 25.0478, Lng: 121.5170}
)

func TestHaversineRoute(t *testing.T) {
	h := NewHaversine()
	km, min, err := h.Route(context.Background(), taipei101, mainStation)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	straight := greatCircleKm(taipei101, mainStation)
	if math.Abs(km-straight*DefaultRoadFactor) > 1e-9 {
		t.Fatalf("expected road factor applied, got %f for straight %f", km, straight)
	}
	if math.Abs(min-km/DefaultSpeedKmh*60) > 1e-9 {
		t.Fatalf("unexpected duration %f", min)
	}
}

func TestHaversineRejectsInvalidPoint(t *testing.T) {
	_, _, err := NewHaversine().Route(context.Background(), types.Point{Lat: 91}, mainStation)
	if !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint, got %v", err)
	}
}

type stubDirections struct {
	routes  []maps.Route
	results []maps.GeocodingResult
	err     error
}

func (s stubDirections) Directions(context.Context, *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error) {
	return s.routes, nil, s.err
}

func (s stubDirections) Geocode(context.Context, *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return s.results, s.err
}

func TestMapsEstimatorUsesDirections(t *testing.T) {
	m := newMapsEstimator(stubDirections{routes: []maps.Route{{
		Legs: []*maps.Leg{
			{Distance: maps.Distance{Meters: 4200}, Duration: 11 * time.Minute},
			{Distance: maps.Distance{Meters: 800}, Duration: 4 * time.Minute},
		},
	}}})

	km, min, err := m.Route(context.Background(), taipei101, mainStation)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if km != 5 || min != 15 {
		t.Fatalf("expected 5km/15min, got %f/%f", km, min)
	}
}

func TestMapsEstimatorFallsBack(t *testing.T) {
	cases := map[string]stubDirections{
		"api error": {err: errors.New("quota exceeded")},
		"no routes": {},
	}
	want, _, _ := NewHaversine().Route(context.Background(), taipei101, mainStation)
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			km, _, err := newMapsEstimator(stub).Route(context.Background(), taipei101, mainStation)
			if err != nil {
				t.Fatalf("route: %v", err)
			}
			if km != want {
				t.Fatalf("expected fallback %f, got %f", want, km)
			}
		})
	}
}

func TestMapsEstimatorGeocode(t *testing.T) {
	m := newMapsEstimator(stubDirections{results: []maps.GeocodingResult{
		{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 25.0478, Lng: 121.517}}},
		{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 1, Lng: 1}}},
	}})
	p, err := m.Geocode(context.Background(), "Taipei Main Station")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if p.Lat != 25.0478 || p.Lng != 121.517 {
		t.Fatalf("expected first match, got %+v", p)
	}

	if _, err := m.Geocode(context.Background(), ""); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress for empty address, got %v", err)
	}
	if _, err := newMapsEstimator(stubDirections{}).Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
}
