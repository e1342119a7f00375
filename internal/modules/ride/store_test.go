// README: Ride store tests (id assignment, CAS transitions, indexes, copy-on-write).
package ride

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehail/internal/types"
)

func newRequested(passengerID types.ID) Ride {
	return Ride{
		PassengerID: passengerID,
		Status:      StatusRequested,
		VehicleType: "economy",
		RequestedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestStoreCreateAssignsIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a, err := s.Create(ctx, newRequested(1))
	require.NoError(t, err)
	b, err := s.Create(ctx, newRequested(2))
	require.NoError(t, err)

	assert.Equal(t, types.ID(1), a.ID)
	assert.Equal(t, types.ID(2), b.ID)
	assert.Equal(t, 0, a.StatusVersion)
}

func TestStoreGetMissing(t *testing.T) {
	_, err := NewStore().Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCopyOnWrite(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	dist := 3.5
	in := newRequested(1)
	in.DistanceKm = &dist
	created, err := s.Create(ctx, in)
	require.NoError(t, err)

	// Mutating the caller's values must not reach the stored record.
	dist = 99
	*created.DistanceKm = 42
	created.Status = StatusCompleted

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DistanceKm)
	assert.Equal(t, 3.5, *got.DistanceKm)
	assert.Equal(t, StatusRequested, got.Status)

	reason := "no show"
	_, err = s.Transition(ctx, TransitionRequest{
		RideID: got.ID, From: StatusRequested, To: StatusCancelled, Version: 0,
		Reason: &reason, At: time.Now(),
	})
	require.NoError(t, err)
	reason = "edited"

	got, err = s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CancelReason)
	assert.Equal(t, "no show", *got.CancelReason)
}

func TestStoreTransitionVersionConflict(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	r, err := s.Create(ctx, newRequested(1))
	require.NoError(t, err)

	driver := types.ID(9)
	next, err := s.Transition(ctx, TransitionRequest{
		RideID: r.ID, From: StatusRequested, To: StatusAccepted, Version: 0,
		DriverID: &driver, At: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, next.StatusVersion)
	require.NotNil(t, next.AcceptedAt)

	// Stale version and stale status both lose.
	_, err = s.Transition(ctx, TransitionRequest{
		RideID: r.ID, From: StatusAccepted, To: StatusInProgress, Version: 0, At: time.Now(),
	})
	require.ErrorIs(t, err, ErrConflict)
	_, err = s.Transition(ctx, TransitionRequest{
		RideID: r.ID, From: StatusRequested, To: StatusCancelled, Version: 1, At: time.Now(),
	})
	require.ErrorIs(t, err, ErrConflict)

	_, err = s.Transition(ctx, TransitionRequest{RideID: 404, From: StatusRequested, To: StatusCancelled})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreAcceptRequiresDriver(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	r, err := s.Create(ctx, newRequested(1))
	require.NoError(t, err)

	_, err = s.Transition(ctx, TransitionRequest{RideID: r.ID, From: StatusRequested, To: StatusAccepted})
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestStoreActiveIndexes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	r, err := s.Create(ctx, newRequested(1))
	require.NoError(t, err)

	got, ok, err := s.ActiveByPassenger(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.ID, got.ID)

	_, err = s.Create(ctx, newRequested(1))
	require.ErrorIs(t, err, ErrActiveRide)

	driver := types.ID(5)
	_, err = s.Transition(ctx, TransitionRequest{
		RideID: r.ID, From: StatusRequested, To: StatusAccepted, Version: 0, DriverID: &driver, At: time.Now(),
	})
	require.NoError(t, err)

	_, ok, err = s.ActiveByDriver(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := s.Create(ctx, newRequested(2))
	require.NoError(t, err)
	_, err = s.Transition(ctx, TransitionRequest{
		RideID: other.ID, From: StatusRequested, To: StatusAccepted, Version: 0, DriverID: &driver, At: time.Now(),
	})
	require.ErrorIs(t, err, ErrActiveRide)

	_, err = s.Transition(ctx, TransitionRequest{RideID: r.ID, From: StatusAccepted, To: StatusCancelled, Version: 1, At: time.Now()})
	require.NoError(t, err)

	_, ok, err = s.ActiveByPassenger(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.ActiveByDriver(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreListFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, p := range []types.ID{1, 2, 3} {
		_, err := s.Create(ctx, newRequested(p))
		require.NoError(t, err)
	}

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, types.ID(1), all[0].ID)

	some, err := s.List(ctx, func(r Ride) bool { return r.PassengerID != 2 })
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, types.ID(3), some[1].PassengerID)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Create(ctx, newRequested(1))
	require.ErrorIs(t, err, context.Canceled)
}
