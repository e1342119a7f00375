// README: Query layer tests (active ride lookups, history order and limit).
package ride

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehail/internal/types"
)

func TestActiveRideLookups(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, ok, err := svc.ActiveRideForUser(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	r := mustCreateRide(t, svc, 1)

	got, ok, err := svc.PassengerActiveRide(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.ID, got.ID)

	// A requested ride does not occupy any driver.
	_, ok, err = svc.DriverActiveRide(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: 10})
	require.NoError(t, err)

	got, ok, err = svc.ActiveRideForUser(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.ID, got.ID)

	_, err = svc.Start(ctx, StartCommand{RideID: r.ID})
	require.NoError(t, err)
	got, ok, err = svc.DriverActiveRide(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, got.Status)

	_, err = svc.Complete(ctx, CompleteCommand{RideID: r.ID})
	require.NoError(t, err)
	for _, uid := range []types.ID{1, 10} {
		_, ok, err = svc.ActiveRideForUser(ctx, uid)
		require.NoError(t, err)
		assert.False(t, ok, "user %d", uid)
	}
}

func TestActiveRideForUserPrefersPassengerSide(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// User 5 drives ride a, then requests ride b as a passenger.
	a := mustCreateRide(t, svc, 1)
	_, err := svc.Accept(ctx, AcceptCommand{RideID: a.ID, DriverID: 5})
	require.NoError(t, err)
	b := mustCreateRide(t, svc, 5)

	got, ok, err := svc.ActiveRideForUser(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
}

func TestUserRideHistoryOrderAndLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Each cycle: request, accept by driver 50, cancel. The step clock keeps
	// requested_at strictly increasing.
	var ids []types.ID
	for i := 0; i < 12; i++ {
		r := mustCreateRide(t, svc, 1)
		_, err := svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: 50})
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, CancelCommand{RideID: r.ID})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	mustCreateRide(t, svc, 2)

	history, err := svc.UserRideHistory(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, DefaultHistoryLimit)
	assert.Equal(t, ids[11], history[0].ID)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].RequestedAt.After(history[i].RequestedAt))
	}

	history, err = svc.UserRideHistory(ctx, 50, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []types.ID{ids[11], ids[10], ids[9]}, []types.ID{history[0].ID, history[1].ID, history[2].ID})

	history, err = svc.UserRideHistory(ctx, 999, 5)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUserRideHistoryTiesByID(t *testing.T) {
	// A frozen clock gives every ride the same requested_at.
	svc := NewService(NewStore(), nil, nil, nil)
	fixed := newRequested(0).RequestedAt
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	var last types.ID
	for i := 0; i < 3; i++ {
		r, err := svc.Create(ctx, CreateCommand{PassengerID: 1, VehicleType: "economy"})
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, CancelCommand{RideID: r.ID})
		require.NoError(t, err)
		last = r.ID
	}

	history, err := svc.UserRideHistory(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, last, history[0].ID)
	assert.Equal(t, types.ID(1), history[2].ID)
}
