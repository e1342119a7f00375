// README: Straight-line route estimator used when no maps backend is configured.
package routing

import (
	"context"
	"errors"
	"math"

	"ridehail/internal/types"
)

const (
	DefaultRoadFactor = 1.3
	DefaultSpeedKmh   = 30.0

	earthRadiusKm = 6371.0
)

var ErrInvalidPoint = errors.New("coordinates out of range")

// Haversine scales the great-circle distance by a road factor and derives the
// duration from an average speed.
type Haversine struct {
	RoadFactor float64
	SpeedKmh   float64
}

func NewHaversine() Haversine {
	return Haversine{RoadFactor: DefaultRoadFactor, SpeedKmh: DefaultSpeedKmh}
}

func (h Haversine) Route(ctx context.Context, from, to types.Point) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if !from.Valid() || !to.Valid() {
		return 0, 0, ErrInvalidPoint
	}
	factor, speed := h.RoadFactor, h.SpeedKmh
	if factor <= 0 {
		factor = DefaultRoadFactor
	}
	if speed <= 0 {
		speed = DefaultSpeedKmh
	}
	km := greatCircleKm(from, to) * factor
	return km, km / speed * 60, nil
}

// greatCircleKm is the haversine distance between two WGS84 points.
func greatCircleKm(a, b types.Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
