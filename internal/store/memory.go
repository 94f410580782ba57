// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used for ephemeral game sessions,
// primarily in development/testing, or when durability is not required.
//
// Characteristics:
//   - Stores serialized records keyed by string in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/connections/internal/game"
)

// ErrNotFound is returned by Delete for a missing key.
var ErrNotFound = errors.New("not found")

// Store is the key/value persistence used for game sessions and share links.
// Implementations may be backed by memory (this file) or SQLite (sqlite.go).
type Store interface {
	game.Storage

	// Delete removes key; ErrNotFound if it was not present.
	Delete(ctx context.Context, key string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu   sync.RWMutex      // guards data map
	data map[string]string // keyed by storage key
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{data: make(map[string]string)}
}

// Get looks up key.
func (m *memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set adds or replaces the value under key.
func (m *memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete removes key.
func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}
