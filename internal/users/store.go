package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ErrNotFound is returned when no user has the requested id.
var ErrNotFound = errors.New("users: not found")

// Store keeps users in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]User
	order []string // ids in creation order
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]User),
		now:  time.Now,
	}
}

// Create stores a new user built from in.
func (s *Store) Create(_ context.Context, in CreateUserInput) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	u := User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Age:       in.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[u.ID] = u
	s.order = append(s.order, u.ID)
	return u
}

// List returns all users in creation order.
func (s *Store) List(_ context.Context) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.order, func(id string, _ int) User {
		return s.byID[id]
	})
}

// Get returns the user with the given id.
func (s *Store) Get(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Update applies in to the user with the given id and returns the result.
func (s *Store) Update(_ context.Context, id string, in UpdateUserInput) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	in.Apply(&u)
	u.UpdatedAt = s.now().UTC()
	s.byID[id] = u
	return u, nil
}

// Delete removes the user with the given id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	s.order = lo.Without(s.order, id)
	return nil
}
