package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

type scopedKey struct {
	tenantID string
	key      string
}

// Store keeps replayable intake responses in process memory.
type Store struct {
	mu    sync.RWMutex
	items map[scopedKey]ports.StoredResponse
}

func NewStore() *Store {
	return &Store{items: make(map[scopedKey]ports.StoredResponse)}
}

// Get returns the stored response for the tenant's key, or nil when unseen.
func (s *Store) Get(_ context.Context, tenantID, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[scopedKey{tenantID, key}]
	if !ok {
		return nil, nil
	}
	value.Body = append([]byte(nil), value.Body...)
	return &value, nil
}

// Save records the first response seen for a key; later saves are ignored.
func (s *Store) Save(_ context.Context, tenantID, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scopedKey{tenantID, key}
	if _, exists := s.items[k]; exists {
		return nil
	}
	response.Body = append([]byte(nil), response.Body...)
	s.items[k] = response
	return nil
}
