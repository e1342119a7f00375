// README: Vehicle service validates driver ownership and vehicle details.
package vehicle

import (
	"context"
	"errors"
	"strings"

	"ridehail/internal/modules/user"
	"ridehail/internal/types"
)

var (
	ErrNotFound   = errors.New("vehicle not found")
	ErrPlateTaken = errors.New("license plate already registered")
	ErrNotDriver  = errors.New("owner is not a driver")
	ErrForbidden  = errors.New("vehicle belongs to another driver")
	ErrBadRequest = errors.New("bad request")
)

type Users interface {
	Get(ctx context.Context, id types.ID) (user.User, error)
}

type Service struct {
	store *Store
	users Users
}

func NewService(store *Store, users Users) *Service {
	return &Service{store: store, users: users}
}

type CreateCommand struct {
	DriverID     types.ID
	Model        string
	Year         int
	Color        string
	LicensePlate string
	Tier         Tier
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (Vehicle, error) {
	if cmd.Tier == "" {
		cmd.Tier = TierEconomy
	}
	if strings.TrimSpace(cmd.LicensePlate) == "" || strings.TrimSpace(cmd.Model) == "" || !cmd.Tier.Valid() {
		return Vehicle{}, ErrBadRequest
	}
	owner, err := s.users.Get(ctx, cmd.DriverID)
	if errors.Is(err, user.ErrNotFound) {
		return Vehicle{}, ErrNotDriver
	}
	if err != nil {
		return Vehicle{}, err
	}
	if owner.Role != user.RoleDriver {
		return Vehicle{}, ErrNotDriver
	}
	return s.store.Create(ctx, Vehicle{
		DriverID:     cmd.DriverID,
		Model:        strings.TrimSpace(cmd.Model),
		Year:         cmd.Year,
		Color:        cmd.Color,
		LicensePlate: strings.TrimSpace(cmd.LicensePlate),
		Tier:         cmd.Tier,
	})
}

func (s *Service) Get(ctx context.Context, id types.ID) (Vehicle, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ByDriver(ctx context.Context, driverID types.ID) (Vehicle, error) {
	return s.store.ByDriver(ctx, driverID)
}

// Update applies p when driverID owns the vehicle.
func (s *Service) Update(ctx context.Context, id, driverID types.ID, p Patch) (Vehicle, error) {
	if p.Tier != nil && !p.Tier.Valid() {
		return Vehicle{}, ErrBadRequest
	}
	if p.LicensePlate != nil && strings.TrimSpace(*p.LicensePlate) == "" {
		return Vehicle{}, ErrBadRequest
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	if cur.DriverID != driverID {
		return Vehicle{}, ErrForbidden
	}
	return s.store.Update(ctx, id, p)
}
