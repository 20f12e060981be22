package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore — хранилище токенов в памяти процесса.
// Используется в тестах и для эфемерных сессий без персистентности.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string, 2)}
}

func (s *MemoryStore) AccessToken(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[KeyAccessToken]
	if !ok {
		return "", ErrNoToken
	}

	return v, nil
}

func (s *MemoryStore) RefreshToken(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[KeyRefreshToken]
	if !ok {
		return "", ErrNoToken
	}

	return v, nil
}

func (s *MemoryStore) SaveTokens(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[KeyAccessToken] = access
	s.values[KeyRefreshToken] = refresh
	return nil
}

func (s *MemoryStore) SaveAccessToken(_ context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[KeyAccessToken] = access
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, KeyAccessToken)
	delete(s.values, KeyRefreshToken)
	return nil
}
