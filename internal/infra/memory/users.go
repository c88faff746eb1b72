package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// Users is an in-memory account store for dev mode and tests.
type Users struct {
	mu     sync.RWMutex
	users  map[int64]domain.User
	nextID int64
}

func NewUsers() *Users {
	return &Users{users: make(map[int64]domain.User)}
}

func (s *Users) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Users) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return u, nil
}

func (s *Users) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
