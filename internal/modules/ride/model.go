// README: Ride aggregate, status definitions and the lifecycle transition table.
package ride

import (
	"time"

	"ridehail/internal/types"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusRequested  Status = "requested"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is one of the persisted ride statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentWallet = "wallet"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentWallet
}

type Ride struct {
	ID                 types.ID     `json:"id"`
	PassengerID        types.ID     `json:"passenger_id"`
	DriverID           *types.ID    `json:"driver_id"`
	OriginAddress      string       `json:"origin_address"`
	DestinationAddress string       `json:"destination_address"`
	Origin             types.Point  `json:"origin"`
	Destination        types.Point  `json:"destination"`
	Status             Status       `json:"status"`
	StatusVersion      int          `json:"status_version"`
	VehicleType        string       `json:"vehicle_type"`
	PaymentMethod      string       `json:"payment_method"`
	DistanceKm         *float64     `json:"distance_km"`
	DurationMin        *float64     `json:"duration_min"`
	Fare               *types.Money `json:"fare"`
	RequestedAt        time.Time    `json:"requested_at"`
	AcceptedAt         *time.Time   `json:"accepted_at"`
	StartedAt          *time.Time   `json:"started_at"`
	CompletedAt        *time.Time   `json:"completed_at"`
	CancelledAt        *time.Time   `json:"cancelled_at"`
	CancelReason       *string      `json:"cancel_reason"`
}

// Active reports whether the ride still occupies its participants.
func (r Ride) Active() bool {
	return !r.Status.Terminal()
}

// HasParticipant reports whether userID is the passenger or the assigned driver.
func (r Ride) HasParticipant(userID types.ID) bool {
	return r.PassengerID == userID || r.IsDriver(userID)
}

// IsDriver reports whether userID is the assigned driver.
func (r Ride) IsDriver(userID types.ID) bool {
	return r.DriverID != nil && *r.DriverID == userID
}

// clone deep-copies pointer fields so callers never share memory with the store.
func (r Ride) clone() Ride {
	c := r
	if r.DriverID != nil {
		c.DriverID = types.IDPtr(*r.DriverID)
	}
	c.DistanceKm = clonePtr(r.DistanceKm)
	c.DurationMin = clonePtr(r.DurationMin)
	c.Fare = clonePtr(r.Fare)
	c.AcceptedAt = clonePtr(r.AcceptedAt)
	c.StartedAt = clonePtr(r.StartedAt)
	c.CompletedAt = clonePtr(r.CompletedAt)
	c.CancelledAt = clonePtr(r.CancelledAt)
	c.CancelReason = clonePtr(r.CancelReason)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type EventKind string

const (
	EventRequested     EventKind = "requested"
	EventAccepted      EventKind = "accepted"
	EventDeclined      EventKind = "declined"
	EventDriverArrived EventKind = "driver_arrived"
	EventStarted       EventKind = "started"
	EventCompleted     EventKind = "completed"
	EventCancelled     EventKind = "cancelled"
)

const (
	ActorPassenger = "passenger"
	ActorDriver    = "driver"
	ActorSystem    = "system"
)

type Event struct {
	ID         int64     `json:"id,omitempty"`
	RideID     types.ID  `json:"ride_id"`
	Kind       EventKind `json:"kind"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorType  string    `json:"actor_type"`
	ActorID    *types.ID `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AllowedTransitions represents the ride state flow (diagram) as code.
var AllowedTransitions = map[Status][]Status{
	StatusNone:       {StatusRequested},
	StatusRequested:  {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

var (
	// passengerActive is the status class guarded for passengers.
	passengerActive = []Status{StatusRequested, StatusAccepted, StatusInProgress}
	// driverActive is the status class guarded for drivers.
	driverActive = []Status{StatusAccepted, StatusInProgress}
)

func statusIn(s Status, set []Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
