package session

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
)

// InMemoryTokenStore is a TokenStore that lives as long as the process
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*InMemoryTokenStore)(nil)

// NewInMemoryTokenStore creates a store, optionally pre-seeded with a token
func NewInMemoryTokenStore(token string) *InMemoryTokenStore {
	return &InMemoryTokenStore{token: token}
}

func (s *InMemoryTokenStore) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", apperrors.ErrNoToken
	}
	return s.token, nil
}

func (s *InMemoryTokenStore) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *InMemoryTokenStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
