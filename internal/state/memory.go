package state

import (
	"context"
	"sync"
)

// MemoryStore keeps the marker in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	lr  LastRun
	set bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetLastRun(context.Context) (LastRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return LastRun{}, ErrNoLastRun
	}
	return m.lr, nil
}

func (m *MemoryStore) SetLastRun(_ context.Context, lr LastRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lr = lr
	m.set = true
	return nil
}

func (m *MemoryStore) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lr = LastRun{}
	m.set = false
	return nil
}

func (m *MemoryStore) Close() error { return nil }
