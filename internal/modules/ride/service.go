// README: Ride service implements the lifecycle state machine over the ride store.
package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ridehail/internal/types"
)

type Pricing interface {
	Quote(ctx context.Context, distanceKm, durationMin float64, tier string) (types.Money, error)
}

type Router interface {
	Route(ctx context.Context, from, to types.Point) (distanceKm, durationMin float64, err error)
}

// Geocoder resolves an address when the caller sent no coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

// EventSink receives every successful lifecycle event.
type EventSink interface {
	Append(ctx context.Context, e Event) error
}

type Service struct {
	store   *Store
	pricing Pricing
	router  Router
	geo     Geocoder
	events  EventSink
	journal EventLog
	log     *slog.Logger
	now     func() time.Time
}

// NewService wires the lifecycle engine. pricing, router and events may be nil.
func NewService(store *Store, pricing Pricing, router Router, events EventSink) *Service {
	return &Service{
		store:   store,
		pricing: pricing,
		router:  router,
		events:  events,
		log:     slog.Default().With("module", "ride"),
		now:     time.Now,
	}
}

// UseGeocoder enables address lookup for rides created without coordinates.
func (s *Service) UseGeocoder(g Geocoder) {
	s.geo = g
}

// UseEventLog enables Events; without it Events fails ErrNoEventLog.
func (s *Service) UseEventLog(l EventLog) {
	s.journal = l
}

var (
	ErrNoEventLog   = errors.New("ride event log not configured")
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("ride not found")
	ErrConflict     = errors.New("ride state conflict")
	ErrActiveRide   = errors.New("participant has active ride")
	ErrBadRequest   = errors.New("bad request")
)

// TransitionError names the status an operation required and the status it found.
type TransitionError struct {
	Op       string
	Required []Status
	Actual   Status
}

func (e *TransitionError) Error() string {
	req := make([]string, len(e.Required))
	for i, s := range e.Required {
		req[i] = string(s)
	}
	return fmt.Sprintf("%s: %s requires %s, ride is %s", ErrInvalidState, e.Op, strings.Join(req, "|"), e.Actual)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidState
}

type CreateCommand struct {
	PassengerID        types.ID
	OriginAddress      string
	DestinationAddress string
	Origin             types.Point
	Destination        types.Point
	VehicleType        string
	PaymentMethod      string
}

type AcceptCommand struct {
	RideID   types.ID
	DriverID types.ID
}

type DeclineCommand struct {
	RideID types.ID
	// DriverID is optional; it only attributes the event.
	DriverID types.ID
}

type ArriveCommand struct {
	RideID types.ID
}

type StartCommand struct {
	RideID types.ID
}

type CompleteCommand struct {
	RideID types.ID
}

type CancelCommand struct {
	RideID    types.ID
	ActorType string
	ActorID   types.ID
	Reason    string
}

const declineReason = "declined"

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (Ride, error) {
	if cmd.PassengerID == 0 || cmd.VehicleType == "" {
		return Ride{}, ErrBadRequest
	}
	// Fail before any paid maps lookups; store.Create repeats the check atomically.
	if _, busy, err := s.store.ActiveByPassenger(ctx, cmd.PassengerID); err != nil {
		return Ride{}, err
	} else if busy {
		return Ride{}, ErrActiveRide
	}
	payment := cmd.PaymentMethod
	if payment == "" {
		payment = PaymentCash
	}

	r := Ride{
		PassengerID:        cmd.PassengerID,
		OriginAddress:      cmd.OriginAddress,
		DestinationAddress: cmd.DestinationAddress,
		Origin:             cmd.Origin,
		Destination:        cmd.Destination,
		Status:             StatusRequested,
		VehicleType:        cmd.VehicleType,
		PaymentMethod:      payment,
		RequestedAt:        s.now(),
	}
	s.locate(ctx, &r)
	s.estimate(ctx, &r)

	created, err := s.store.Create(ctx, r)
	if err != nil {
		return Ride{}, err
	}
	s.emit(ctx, Event{
		RideID:     created.ID,
		Kind:       EventRequested,
		FromStatus: StatusNone,
		ToStatus:   StatusRequested,
		ActorType:  ActorPassenger,
		ActorID:    types.IDPtr(cmd.PassengerID),
		CreatedAt:  created.RequestedAt,
	})
	return created, nil
}

// locate fills zero coordinates from the addresses; failures leave them unset.
func (s *Service) locate(ctx context.Context, r *Ride) {
	if s.geo == nil {
		return
	}
	resolve := func(addr string, p *types.Point) {
		if *p != (types.Point{}) || addr == "" {
			return
		}
		got, err := s.geo.Geocode(ctx, addr)
		if err != nil {
			s.log.Warn("geocode failed", "address", addr, "error", err)
			return
		}
		*p = got
	}
	resolve(r.OriginAddress, &r.Origin)
	resolve(r.DestinationAddress, &r.Destination)
}

// estimate fills distance, duration and fare on a best-effort basis.
// Rides with an unresolved endpoint get no estimate.
func (s *Service) estimate(ctx context.Context, r *Ride) {
	if s.router == nil {
		return
	}
	if r.Origin == (types.Point{}) || r.Destination == (types.Point{}) {
		s.log.Debug("skipping estimate for unresolved coordinates", "passenger_id", r.PassengerID)
		return
	}
	dist, dur, err := s.router.Route(ctx, r.Origin, r.Destination)
	if err != nil {
		s.log.Warn("route estimate failed", "error", err)
		return
	}
	r.DistanceKm = &dist
	r.DurationMin = &dur
	if s.pricing == nil {
		return
	}
	fare, err := s.pricing.Quote(ctx, dist, dur, r.VehicleType)
	if err != nil {
		s.log.Warn("fare estimate failed", "vehicle_type", r.VehicleType, "error", err)
		return
	}
	r.Fare = &fare
}

func (s *Service) Get(ctx context.Context, id types.ID) (Ride, error) {
	return s.store.Get(ctx, id)
}

// Events returns the recorded lifecycle of an existing ride.
func (s *Service) Events(ctx context.Context, rideID types.ID) ([]Event, error) {
	if _, err := s.store.Get(ctx, rideID); err != nil {
		return nil, err
	}
	if s.journal == nil {
		return nil, ErrNoEventLog
	}
	return s.journal.ListByRide(ctx, rideID)
}

func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (Ride, error) {
	if cmd.DriverID == 0 {
		return Ride{}, ErrBadRequest
	}
	r, err := s.load(ctx, "accept", cmd.RideID, StatusRequested)
	if err != nil {
		return Ride{}, err
	}
	if r.PassengerID == cmd.DriverID {
		return Ride{}, ErrBadRequest
	}
	if _, busy, err := s.store.ActiveByDriver(ctx, cmd.DriverID); err != nil {
		return Ride{}, err
	} else if busy {
		return Ride{}, ErrActiveRide
	}
	return s.apply(ctx, "accept", r, transition{
		to:       StatusAccepted,
		required: []Status{StatusRequested},
		driverID: &cmd.DriverID,
		kind:     EventAccepted,
		actor:    ActorDriver,
		actorID:  &cmd.DriverID,
	})
}

// Decline is a driver turning down a requested ride; the ride ends cancelled.
func (s *Service) Decline(ctx context.Context, cmd DeclineCommand) (Ride, error) {
	r, err := s.load(ctx, "decline", cmd.RideID, StatusRequested)
	if err != nil {
		return Ride{}, err
	}
	reason := declineReason
	t := transition{
		to:       StatusCancelled,
		required: []Status{StatusRequested},
		reason:   &reason,
		kind:     EventDeclined,
		actor:    ActorDriver,
	}
	if cmd.DriverID != 0 {
		t.actorID = &cmd.DriverID
	}
	return s.apply(ctx, "decline", r, t)
}

// MarkDriverArrived only checks the ride is accepted and emits a notification
// event; accepted covers both "en route" and "arrived, awaiting start".
func (s *Service) MarkDriverArrived(ctx context.Context, cmd ArriveCommand) (Ride, error) {
	r, err := s.load(ctx, "arrive", cmd.RideID, StatusAccepted)
	if err != nil {
		return Ride{}, err
	}
	s.emit(ctx, Event{
		RideID:     r.ID,
		Kind:       EventDriverArrived,
		FromStatus: r.Status,
		ToStatus:   r.Status,
		ActorType:  ActorDriver,
		ActorID:    r.DriverID,
		CreatedAt:  s.now(),
	})
	return r, nil
}

func (s *Service) Start(ctx context.Context, cmd StartCommand) (Ride, error) {
	r, err := s.load(ctx, "start", cmd.RideID, StatusAccepted)
	if err != nil {
		return Ride{}, err
	}
	return s.apply(ctx, "start", r, transition{
		to:       StatusInProgress,
		required: []Status{StatusAccepted},
		kind:     EventStarted,
		actor:    ActorDriver,
		actorID:  r.DriverID,
	})
}

func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (Ride, error) {
	r, err := s.load(ctx, "complete", cmd.RideID, StatusInProgress)
	if err != nil {
		return Ride{}, err
	}
	return s.apply(ctx, "complete", r, transition{
		to:       StatusCompleted,
		required: []Status{StatusInProgress},
		kind:     EventCompleted,
		actor:    ActorDriver,
		actorID:  r.DriverID,
	})
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (Ride, error) {
	r, err := s.load(ctx, "cancel", cmd.RideID, passengerActive...)
	if err != nil {
		return Ride{}, err
	}
	t := transition{
		to:       StatusCancelled,
		required: passengerActive,
		kind:     EventCancelled,
		actor:    cmd.ActorType,
	}
	if t.actor == "" {
		t.actor = ActorSystem
	}
	if cmd.ActorID != 0 {
		t.actorID = &cmd.ActorID
	}
	if cmd.Reason != "" {
		t.reason = &cmd.Reason
	}
	return s.apply(ctx, "cancel", r, t)
}

type transition struct {
	to       Status
	required []Status
	driverID *types.ID
	reason   *string
	kind     EventKind
	actor    string
	actorID  *types.ID
}

// load resolves the ride and checks it is in one of the required statuses.
func (s *Service) load(ctx context.Context, op string, id types.ID, required ...Status) (Ride, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Ride{}, err
	}
	if !statusIn(r.Status, required) {
		return Ride{}, &TransitionError{Op: op, Required: required, Actual: r.Status}
	}
	return r, nil
}

func (s *Service) apply(ctx context.Context, op string, r Ride, t transition) (Ride, error) {
	if !CanTransition(r.Status, t.to) {
		return Ride{}, &TransitionError{Op: op, Required: t.required, Actual: r.Status}
	}
	at := s.now()
	next, err := s.store.Transition(ctx, TransitionRequest{
		RideID:   r.ID,
		From:     r.Status,
		To:       t.to,
		Version:  r.StatusVersion,
		DriverID: t.driverID,
		Reason:   t.reason,
		At:       at,
	})
	if errors.Is(err, ErrConflict) {
		// Lost a race: report the status the winner left behind when it no longer qualifies.
		if cur, gerr := s.store.Get(ctx, r.ID); gerr == nil && !statusIn(cur.Status, t.required) {
			return Ride{}, &TransitionError{Op: op, Required: t.required, Actual: cur.Status}
		}
		return Ride{}, ErrConflict
	}
	if err != nil {
		return Ride{}, err
	}
	s.log.Debug("ride transition", "ride_id", next.ID, "from", r.Status, "to", next.Status, "version", next.StatusVersion)
	s.emit(ctx, Event{
		RideID:     next.ID,
		Kind:       t.kind,
		FromStatus: r.Status,
		ToStatus:   next.Status,
		ActorType:  t.actor,
		ActorID:    t.actorID,
		CreatedAt:  at,
	})
	return next, nil
}

func (s *Service) emit(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Warn("append ride event failed", "ride_id", e.RideID, "kind", e.Kind, "error", err)
	}
}
