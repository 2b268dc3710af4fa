package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store. It can be told to fail writes, which
// makes it useful as a test double for persistence failures.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	failKeys map[string]error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		failKeys: make(map[string]error),
	}
}

// FailWrites makes Set and Delete for key return err. A nil err clears it.
func (m *MemoryStore) FailWrites(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failKeys, key)
		return
	}
	m.failKeys[key] = err
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failKeys[key]; err != nil {
		return persistErr("set", key, err)
	}
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failKeys[key]; err != nil {
		return persistErr("delete", key, err)
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) GetAll(_ context.Context) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range maps.All(m.data) {
		out[k] = slices.Clone(v)
	}
	return out, nil
}
