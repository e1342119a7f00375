// README: User store kept in process memory with unique username and email indexes.
package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"ridehail/internal/types"
)

type Store struct {
	mu         sync.RWMutex
	users      map[types.ID]User
	byUsername map[string]types.ID
	byEmail    map[string]types.ID
	nextID     types.ID
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[types.ID]User),
		byUsername: make(map[string]types.ID),
		byEmail:    make(map[string]types.ID),
		now:        time.Now,
	}
}

// emailKey folds case; an empty email is never indexed.
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Create(ctx context.Context, u User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[u.Username]; taken {
		return User{}, ErrUsernameTaken
	}
	key := emailKey(u.Email)
	if key != "" {
		if _, taken := s.byEmail[key]; taken {
			return User{}, ErrEmailTaken
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	s.byUsername[u.Username] = u.ID
	if key != "" {
		s.byEmail[key] = u.ID
	}
	return u, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.users[id], nil
}

// Update merges p into the stored user and replaces the record.
func (s *Store) Update(ctx context.Context, id types.ID, p Patch) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	next := p.apply(cur)
	oldKey, newKey := emailKey(cur.Email), emailKey(next.Email)
	if newKey != oldKey && newKey != "" {
		if owner, taken := s.byEmail[newKey]; taken && owner != id {
			return User{}, ErrEmailTaken
		}
	}
	if oldKey != newKey {
		delete(s.byEmail, oldKey)
		if newKey != "" {
			s.byEmail[newKey] = id
		}
	}
	s.users[id] = next
	return next, nil
}
