// Package store persists session snapshots by id. The server keeps live
// sessions in memory and writes save snapshots through a Store.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no snapshot exists for an id.
var ErrNotFound = errors.New("store: session not found")

// Store persists serialized session snapshots.
type Store interface {
	// Get returns the snapshot bytes for an id.
	Get(ctx context.Context, id string) ([]byte, error)
	// Put writes or replaces the snapshot for an id.
	Put(ctx context.Context, id string, data []byte) error
	// Delete removes the snapshot for an id. Deleting a missing id is not
	// an error.
	Delete(ctx context.Context, id string) error
	// List returns all stored ids.
	List(ctx context.Context) ([]string, error)
	// Close releases underlying resources.
	Close() error
}

// Memory is an in-memory Store for tests and ephemeral servers.
type Memory struct {
	mu    sync.RWMutex
	saves map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{saves: map[string][]byte{}}
}

func (m *Memory) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.saves[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Put(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.saves[id] = stored
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.saves))
	for id := range m.saves {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) Close() error { return nil }
