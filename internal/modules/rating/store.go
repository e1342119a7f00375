// README: Rating store kept in process memory, unique per (ride, rater).
package rating

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"ridehail/internal/types"
)

type Store struct {
	mu      sync.RWMutex
	ratings map[types.ID]Rating
	byRater map[raterKey]types.ID
	byRatee map[types.ID][]types.ID
	nextID  types.ID
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		ratings: make(map[types.ID]Rating),
		byRater: make(map[raterKey]types.ID),
		byRatee: make(map[types.ID][]types.ID),
		now:     time.Now,
	}
}

func (s *Store) Create(ctx context.Context, r Rating) (Rating, error) {
	if err := ctx.Err(); err != nil {
		return Rating{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := raterKey{rideID: r.RideID, from: r.FromUserID}
	if _, dup := s.byRater[key]; dup {
		return Rating{}, ErrAlreadyRated
	}
	s.nextID++
	r.ID = s.nextID
	r.CreatedAt = s.now()
	s.ratings[r.ID] = r
	s.byRater[key] = r.ID
	s.byRatee[r.ToUserID] = append(s.byRatee[r.ToUserID], r.ID)
	return r, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (Rating, error) {
	if err := ctx.Err(); err != nil {
		return Rating{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[id]
	if !ok {
		return Rating{}, ErrNotFound
	}
	return r, nil
}

// ForRatee returns ratings received by userID, newest first, ties by id desc.
func (s *Store) ForRatee(ctx context.Context, userID types.ID) ([]Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := s.byRatee[userID]
	out := make([]Rating, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.ratings[id])
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Rating) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}
