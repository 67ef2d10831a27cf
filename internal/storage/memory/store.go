package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tjfontaine/snaptrade-go/internal/storage"
)

// Store is an in-memory implementation of UserStore
type Store struct {
	mu    sync.RWMutex
	users map[string]storage.User
}

var _ storage.UserStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		users: make(map[string]storage.User),
	}
}

func (s *Store) SaveUser(ctx context.Context, user *storage.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, storage.ErrUserNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.User, 0, len(s.users))
	for _, user := range s.users {
		u := user
		result = append(result, &u)
	}
	slices.SortFunc(result, func(a, b *storage.User) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (s *Store) Close() error {
	return nil
}
