// README: Vehicle store kept in process memory with a unique plate index.
package vehicle

import (
	"context"
	"strings"
	"sync"
	"time"

	"ridehail/internal/types"
)

type Store struct {
	mu       sync.RWMutex
	vehicles map[types.ID]Vehicle
	byPlate  map[string]types.ID
	// byDriver lists vehicle ids per driver in creation order.
	byDriver map[types.ID][]types.ID
	nextID   types.ID
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		vehicles: make(map[types.ID]Vehicle),
		byPlate:  make(map[string]types.ID),
		byDriver: make(map[types.ID][]types.ID),
		now:      time.Now,
	}
}

func plateKey(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), " ", ""))
}

func (s *Store) Create(ctx context.Context, v Vehicle) (Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return Vehicle{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := plateKey(v.LicensePlate)
	if _, taken := s.byPlate[key]; taken {
		return Vehicle{}, ErrPlateTaken
	}
	s.nextID++
	v.ID = s.nextID
	v.CreatedAt = s.now()
	s.vehicles[v.ID] = v
	s.byPlate[key] = v.ID
	s.byDriver[v.DriverID] = append(s.byDriver[v.DriverID], v.ID)
	return v, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return Vehicle{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return Vehicle{}, ErrNotFound
	}
	return v, nil
}

// ByDriver returns the driver's lowest-id vehicle.
func (s *Store) ByDriver(ctx context.Context, driverID types.ID) (Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return Vehicle{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byDriver[driverID]
	if len(ids) == 0 {
		return Vehicle{}, ErrNotFound
	}
	return s.vehicles[ids[0]], nil
}

func (s *Store) Update(ctx context.Context, id types.ID, p Patch) (Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return Vehicle{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.vehicles[id]
	if !ok {
		return Vehicle{}, ErrNotFound
	}
	next := p.apply(cur)
	oldKey, newKey := plateKey(cur.LicensePlate), plateKey(next.LicensePlate)
	if oldKey != newKey {
		if _, taken := s.byPlate[newKey]; taken {
			return Vehicle{}, ErrPlateTaken
		}
		delete(s.byPlate, oldKey)
		s.byPlate[newKey] = id
	}
	s.vehicles[id] = next
	return next, nil
}
