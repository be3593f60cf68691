// Package clientstate keeps small per-client records such as the onboarding record and the
// signed-in identity. Values are opaque bytes; callers own the encoding.
package clientstate

import (
	"context"
	"sync"
)

const (
	StateKey    = "onboarding-state"
	IdentityKey = "session-identity"
)

// Store reads and writes named values for one client. Get returns nil, nil for a missing value.
type Store interface {
	Get(ctx context.Context, clientID, key string) ([]byte, error)
	Set(ctx context.Context, clientID, key string, value []byte) error
	Delete(ctx context.Context, clientID string, keys ...string) error
}

// MemoryStore is a process-local Store used when Redis is not configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clients: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, clientID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.clients[clientID][key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, clientID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.clients[clientID]
	if !ok {
		values = make(map[string][]byte)
		m.clients[clientID] = values
	}
	values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, clientID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := m.clients[clientID]
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		delete(m.clients, clientID)
	}
	return nil
}
