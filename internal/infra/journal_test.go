// README: Postgres journal tests (skipped unless ARK_TEST_DSN points at a database).
package infra

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ridehail/internal/modules/ride"
	"ridehail/internal/types"
)

func TestJournalAppendAndList(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	events := []ride.Event{
		{RideID: 1, Kind: ride.EventRequested, FromStatus: ride.StatusNone, ToStatus: ride.StatusRequested, ActorType: ride.ActorPassenger, ActorID: types.IDPtr(5), CreatedAt: at},
		{RideID: 2, Kind: ride.EventRequested, FromStatus: ride.StatusNone, ToStatus: ride.StatusRequested, ActorType: ride.ActorPassenger, CreatedAt: at},
		{RideID: 1, Kind: ride.EventCancelled, FromStatus: ride.StatusRequested, ToStatus: ride.StatusCancelled, ActorType: ride.ActorSystem, CreatedAt: at.Add(time.Minute)},
	}
	for _, e := range events {
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := j.ListByRide(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != ride.EventRequested || got[0].ActorID == nil || *got[0].ActorID != 5 {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if got[1].ToStatus != ride.StatusCancelled || got[1].ActorID != nil {
		t.Fatalf("unexpected second event: %+v", got[1])
	}
	if !got[1].CreatedAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("expected created_at preserved, got %v", got[1].CreatedAt)
	}
}

func TestRoutingKey(t *testing.T) {
	if got := RoutingKey(ride.Event{Kind: ride.EventDriverArrived}); got != "ride.driver_arrived" {
		t.Fatalf("unexpected routing key %q", got)
	}
}

func setupTestJournal(t *testing.T) *PostgresJournal {
	t.Helper()

	dsn := os.Getenv("ARK_TEST_DSN")
	if dsn == "" {
		t.Skip("ARK_TEST_DSN not set; skipping DB-backed journal tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE ride_events"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewPostgresJournal(db)
}

// applyMigration runs the whole file at once; pgx sends argument-less Exec
// calls over the simple protocol, which accepts multiple statements.
func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return errors.New("locate test source")
	}
	path := filepath.Join(filepath.Dir(file), "..", "..", "migrations", "0001_init.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(content))
	return err
}
