// README: Append-only ride event journal in Postgres (audit trail, never replayed).
package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridehail/internal/modules/ride"
	"ridehail/internal/types"
)

type PostgresJournal struct {
	db *pgxpool.Pool
}

func NewPostgresJournal(db *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (j *PostgresJournal) Append(ctx context.Context, e ride.Event) error {
	var actorID *int64
	if e.ActorID != nil {
		v := int64(*e.ActorID)
		actorID = &v
	}
	_, err := j.db.Exec(ctx, `
		INSERT INTO ride_events (ride_id, kind, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, int64(e.RideID), string(e.Kind), string(e.FromStatus), string(e.ToStatus), e.ActorType, actorID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append ride event: %w", err)
	}
	return nil
}

// ListByRide returns the journal for one ride in append order.
func (j *PostgresJournal) ListByRide(ctx context.Context, rideID types.ID) ([]ride.Event, error) {
	rows, err := j.db.Query(ctx, `
		SELECT id, ride_id, kind, from_status, to_status, actor_type, actor_id, created_at
		FROM ride_events
		WHERE ride_id = $1
		ORDER BY id
	`, int64(rideID))
	if err != nil {
		return nil, fmt.Errorf("list ride events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ride.Event, error) {
		var (
			e              ride.Event
			id             int64
			kind, from, to string
			actorID        *int64
		)
		if err := row.Scan(&e.ID, &id, &kind, &from, &to, &e.ActorType, &actorID, &e.CreatedAt); err != nil {
			return ride.Event{}, err
		}
		e.RideID = types.ID(id)
		e.Kind = ride.EventKind(kind)
		e.FromStatus = ride.Status(from)
		e.ToStatus = ride.Status(to)
		if actorID != nil {
			e.ActorID = types.IDPtr(types.ID(*actorID))
		}
		return e, nil
	})
}
