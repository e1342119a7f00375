// README: Ride store kept in process memory with per-participant active-ride indexes.
package ride

import (
	"context"
	"sync"
	"time"

	"ridehail/internal/types"
)

type Store struct {
	mu     sync.RWMutex
	rides  map[types.ID]Ride
	nextID types.ID

	// activeByPassenger holds rides in requested, accepted or in_progress.
	activeByPassenger map[types.ID]types.ID
	// activeByDriver holds rides in accepted or in_progress.
	activeByDriver map[types.ID]types.ID
}

func NewStore() *Store {
	return &Store{
		rides:             make(map[types.ID]Ride),
		activeByPassenger: make(map[types.ID]types.ID),
		activeByDriver:    make(map[types.ID]types.ID),
	}
}

// TransitionRequest is a compare-and-swap on (Status, StatusVersion).
type TransitionRequest struct {
	RideID   types.ID
	From     Status
	To       Status
	Version  int
	DriverID *types.ID
	Reason   *string
	At       time.Time
}

// Create assigns the next id and stores r. It fails with ErrActiveRide when the
// passenger already holds an active ride; the check and the insert are atomic.
func (s *Store) Create(ctx context.Context, r Ride) (Ride, error) {
	if err := ctx.Err(); err != nil {
		return Ride{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.activeByPassenger[r.PassengerID]; busy {
		return Ride{}, ErrActiveRide
	}
	s.nextID++
	r.ID = s.nextID
	r.StatusVersion = 0
	r = r.clone()
	s.rides[r.ID] = r
	if r.Active() {
		s.activeByPassenger[r.PassengerID] = r.ID
	}
	return r.clone(), nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (Ride, error) {
	if err := ctx.Err(); err != nil {
		return Ride{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rides[id]
	if !ok {
		return Ride{}, ErrNotFound
	}
	return r.clone(), nil
}

// Transition replaces the stored ride with its next state. It returns ErrConflict
// when the ride moved since the caller read it, and ErrActiveRide when an
// accepting driver already holds another active ride.
func (s *Store) Transition(ctx context.Context, req TransitionRequest) (Ride, error) {
	if err := ctx.Err(); err != nil {
		return Ride{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rides[req.RideID]
	if !ok {
		return Ride{}, ErrNotFound
	}
	if cur.Status != req.From || cur.StatusVersion != req.Version {
		return Ride{}, ErrConflict
	}
	if req.To == StatusAccepted {
		if req.DriverID == nil {
			return Ride{}, ErrBadRequest
		}
		if other, busy := s.activeByDriver[*req.DriverID]; busy && other != cur.ID {
			return Ride{}, ErrActiveRide
		}
	}

	next := cur.clone()
	next.Status = req.To
	next.StatusVersion++
	at := req.At
	switch req.To {
	case StatusAccepted:
		next.DriverID = types.IDPtr(*req.DriverID)
		next.AcceptedAt = &at
	case StatusInProgress:
		next.StartedAt = &at
	case StatusCompleted:
		next.CompletedAt = &at
	case StatusCancelled:
		next.CancelledAt = &at
		next.CancelReason = clonePtr(req.Reason)
	}

	s.rides[next.ID] = next
	s.reindex(next)
	return next.clone(), nil
}

// reindex keeps the active-ride indexes in line with r. Caller holds s.mu.
func (s *Store) reindex(r Ride) {
	if statusIn(r.Status, passengerActive) {
		s.activeByPassenger[r.PassengerID] = r.ID
	} else if s.activeByPassenger[r.PassengerID] == r.ID {
		delete(s.activeByPassenger, r.PassengerID)
	}
	if r.DriverID == nil {
		return
	}
	if statusIn(r.Status, driverActive) {
		s.activeByDriver[*r.DriverID] = r.ID
	} else if s.activeByDriver[*r.DriverID] == r.ID {
		delete(s.activeByDriver, *r.DriverID)
	}
}

// ActiveByPassenger returns the passenger's ride in requested, accepted or in_progress.
func (s *Store) ActiveByPassenger(ctx context.Context, passengerID types.ID) (Ride, bool, error) {
	return s.activeLookup(ctx, s.activeByPassenger, passengerID)
}

// ActiveByDriver returns the driver's ride in accepted or in_progress.
func (s *Store) ActiveByDriver(ctx context.Context, driverID types.ID) (Ride, bool, error) {
	return s.activeLookup(ctx, s.activeByDriver, driverID)
}

func (s *Store) activeLookup(ctx context.Context, index map[types.ID]types.ID, userID types.ID) (Ride, bool, error) {
	if err := ctx.Err(); err != nil {
		return Ride{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := index[userID]
	if !ok {
		return Ride{}, false, nil
	}
	return s.rides[id].clone(), true, nil
}

// List returns copies of every ride matching keep, in id order.
func (s *Store) List(ctx context.Context, keep func(Ride) bool) ([]Ride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Ride, 0)
	for id := types.ID(1); id <= s.nextID; id++ {
		r, ok := s.rides[id]
		if !ok || (keep != nil && !keep(r)) {
			continue
		}
		out = append(out, r.clone())
	}
	return out, nil
}
