// README: Rating service checks the ride outcome and participants before storing a score.
package rating

import (
	"context"
	"errors"

	"ridehail/internal/modules/ride"
	"ridehail/internal/types"
)

var (
	ErrNotFound         = errors.New("rating not found")
	ErrAlreadyRated     = errors.New("ride already rated by this user")
	ErrRideNotCompleted = errors.New("ride is not completed")
	ErrNotParticipant   = errors.New("user did not take part in the ride")
)

type Rides interface {
	Get(ctx context.Context, id types.ID) (ride.Ride, error)
}

type Service struct {
	store *Store
	rides Rides
}

func NewService(store *Store, rides Rides) *Service {
	return &Service{store: store, rides: rides}
}

// CreateCommand: ToUserID 0 means "the other participant".
type CreateCommand struct {
	RideID     types.ID
	FromUserID types.ID
	ToUserID   types.ID
	Score      int
	Comment    string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (Rating, error) {
	r, err := s.rides.Get(ctx, cmd.RideID)
	if err != nil {
		return Rating{}, err
	}
	if r.Status != ride.StatusCompleted {
		return Rating{}, ErrRideNotCompleted
	}
	if !r.HasParticipant(cmd.FromUserID) {
		return Rating{}, ErrNotParticipant
	}
	to := cmd.ToUserID
	if to == 0 {
		to = counterparty(r, cmd.FromUserID)
	}
	if to == cmd.FromUserID || !r.HasParticipant(to) {
		return Rating{}, ErrNotParticipant
	}
	return s.store.Create(ctx, Rating{
		RideID:     r.ID,
		FromUserID: cmd.FromUserID,
		ToUserID:   to,
		Score:      cmd.Score,
		Comment:    cmd.Comment,
	})
}

func counterparty(r ride.Ride, from types.ID) types.ID {
	if r.PassengerID == from {
		if r.DriverID == nil {
			return 0
		}
		return *r.DriverID
	}
	return r.PassengerID
}

func (s *Service) Get(ctx context.Context, id types.ID) (Rating, error) {
	return s.store.Get(ctx, id)
}

// UserRatings lists ratings where userID is the ratee.
func (s *Service) UserRatings(ctx context.Context, userID types.ID) ([]Rating, error) {
	return s.store.ForRatee(ctx, userID)
}
