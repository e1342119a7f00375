// README: Read-only ride projections (active ride lookups and history).
package ride

import (
	"cmp"
	"context"
	"slices"

	"ridehail/internal/types"
)

// DefaultHistoryLimit applies when UserRideHistory gets a non-positive limit.
const DefaultHistoryLimit = 10

// ActiveRideForUser returns the user's non-terminal ride, checking the
// passenger side before the driver side.
func (s *Service) ActiveRideForUser(ctx context.Context, userID types.ID) (Ride, bool, error) {
	r, ok, err := s.store.ActiveByPassenger(ctx, userID)
	if err != nil || ok {
		return r, ok, err
	}
	return s.store.ActiveByDriver(ctx, userID)
}

// DriverActiveRide is the double-booking guard for drivers.
func (s *Service) DriverActiveRide(ctx context.Context, driverID types.ID) (Ride, bool, error) {
	return s.store.ActiveByDriver(ctx, driverID)
}

// PassengerActiveRide is the double-booking guard for passengers.
func (s *Service) PassengerActiveRide(ctx context.Context, passengerID types.ID) (Ride, bool, error) {
	return s.store.ActiveByPassenger(ctx, passengerID)
}

// UserRideHistory lists rides the user took part in, newest request first.
func (s *Service) UserRideHistory(ctx context.Context, userID types.ID, limit int) ([]Ride, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rides, err := s.store.List(ctx, func(r Ride) bool { return r.HasParticipant(userID) })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rides, func(a, b Ride) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(rides) > limit {
		rides = rides[:limit]
	}
	return rides, nil
}
