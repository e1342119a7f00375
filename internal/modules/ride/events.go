// README: Ride event sinks (fan-out, structured log, in-memory recorder).
package ride

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"ridehail/internal/types"
)

// EventLog reads back the events recorded for one ride, oldest first.
type EventLog interface {
	ListByRide(ctx context.Context, rideID types.ID) ([]Event, error)
}

// MultiSink appends to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) Append(ctx context.Context, e Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) Append(ctx context.Context, e Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"ride_id", e.RideID,
		"kind", e.Kind,
		"from", e.FromStatus,
		"to", e.ToStatus,
		"actor_type", e.ActorType,
	}
	if e.ActorID != nil {
		attrs = append(attrs, "actor_id", *e.ActorID)
	}
	logger.InfoContext(ctx, "ride event", attrs...)
	return nil
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.events) + 1)
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) ListByRide(_ context.Context, rideID types.ID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.RideID == rideID {
			out = append(out, e)
		}
	}
	return out, nil
}
