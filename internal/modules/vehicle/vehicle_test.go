// README: Vehicle module tests (ownership, plate uniqueness, lookups, patches).
package vehicle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehail/internal/modules/user"
	"ridehail/internal/types"
)

type stubUsers map[types.ID]user.User

func (s stubUsers) Get(_ context.Context, id types.ID) (user.User, error) {
	u, ok := s[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func newTestService() *Service {
	return NewService(NewStore(), stubUsers{
		1: {ID: 1, Role: user.RoleDriver},
		2: {ID: 2, Role: user.RoleDriver},
		3: {ID: 3, Role: user.RolePassenger},
	})
}

func TestCreateVehicle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateCommand{DriverID: 1, Model: "Prius", Year: 2022, Color: "white", LicensePlate: "ABC-1234"})
	require.NoError(t, err)
	assert.Equal(t, types.ID(1), v.ID)
	assert.Equal(t, TierEconomy, v.Tier)
	assert.False(t, v.CreatedAt.IsZero())

	_, err = svc.Create(ctx, CreateCommand{DriverID: 2, Model: "Camry", LicensePlate: "abc-1234 "})
	require.ErrorIs(t, err, ErrPlateTaken)
}

func TestCreateVehicleRejects(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  CreateCommand
		want error
	}{
		{"passenger owner", CreateCommand{DriverID: 3, Model: "Golf", LicensePlate: "P-1"}, ErrNotDriver},
		{"unknown owner", CreateCommand{DriverID: 9, Model: "Golf", LicensePlate: "P-2"}, ErrNotDriver},
		{"missing plate", CreateCommand{DriverID: 1, Model: "Golf"}, ErrBadRequest},
		{"unknown tier", CreateCommand{DriverID: 1, Model: "Golf", LicensePlate: "P-3", Tier: "limo"}, ErrBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.cmd)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestByDriverReturnsLowestID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateCommand{DriverID: 1, Model: "Prius", LicensePlate: "A-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCommand{DriverID: 1, Model: "Model 3", LicensePlate: "A-2", Tier: TierPremium})
	require.NoError(t, err)

	got, err := svc.ByDriver(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = svc.ByDriver(ctx, 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateVehicle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateCommand{DriverID: 1, Model: "Prius", LicensePlate: "A-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCommand{DriverID: 2, Model: "Camry", LicensePlate: "B-1"})
	require.NoError(t, err)

	color, tier := "black", TierComfort
	got, err := svc.Update(ctx, a.ID, 1, Patch{Color: &color, Tier: &tier})
	require.NoError(t, err)
	assert.Equal(t, "black", got.Color)
	assert.Equal(t, TierComfort, got.Tier)
	assert.Equal(t, "Prius", got.Model)

	_, err = svc.Update(ctx, a.ID, 2, Patch{Color: &color})
	require.ErrorIs(t, err, ErrForbidden)

	plate := "b-1"
	_, err = svc.Update(ctx, a.ID, 1, Patch{LicensePlate: &plate})
	require.ErrorIs(t, err, ErrPlateTaken)

	plate = "A-9"
	got, err = svc.Update(ctx, a.ID, 1, Patch{LicensePlate: &plate})
	require.NoError(t, err)
	assert.Equal(t, "A-9", got.LicensePlate)

	// The released plate can be registered again.
	_, err = svc.Create(ctx, CreateCommand{DriverID: 2, Model: "Civic", LicensePlate: "A-1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 404, 1, Patch{Color: &color})
	require.ErrorIs(t, err, ErrNotFound)
}
