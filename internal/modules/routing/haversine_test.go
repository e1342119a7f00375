package routing

import (
	"context"
	"math"
	"testing"

	"ridehail/internal/types"
)

func TestGreatCircleKm(t *testing.T) {
	tests := []struct {
		name      string
		from, to  types.Point
		wantKm    float64
		tolerance float64
	}{
		{"same point", taipei101, taipei101, 0, 0.001},
		{"taipei 101 to main station", taipei101, mainStation, 5.0, 0.5},
		{"new york to los angeles", types.Point{Lat: 40.7128, Lng: -74.0060}, types.Point{Lat: 34.0522, Lng: -118.2437}, 3944, 50},
		{"antipodes", types.Point{Lat: 0, Lng: 0}, types.Point{Lat: 0, Lng: 180}, math.Pi * earthRadiusKm, 0.001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := greatCircleKm(tt.from, tt.to)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("greatCircleKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
			if back := greatCircleKm(tt.to, tt.from); math.Abs(back-got) > 1e-9 {
				t.Errorf("not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestHaversineZeroValueUsesDefaults(t *testing.T) {
	var h Haversine
	km, min, err := h.Route(context.Background(), taipei101, mainStation)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	want, wantMin, _ := NewHaversine().Route(context.Background(), taipei101, mainStation)
	if km != want || min != wantMin {
		t.Fatalf("expected defaults %f/%f, got %f/%f", want, wantMin, km, min)
	}
}

func TestHaversineHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewHaversine().Route(ctx, taipei101, mainStation); err == nil {
		t.Fatal("expected context error")
	}
}
