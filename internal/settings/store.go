// Package settings persists small string preferences by key.
package settings

import (
	"sync"

	"filedeck/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendYAML   = "yaml"
	BackendTOML   = "toml"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Store is a narrow key/value contract. Get reports ok=false for a missing key.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Open returns the store for backend, persisted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendYAML:
		return NewYAMLStore(path), nil
	case BackendTOML:
		return NewTOMLStore(path), nil
	case BackendBolt:
		s, err := OpenBoltStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.NewConfigError("unknown settings backend", "settings.backend", errors.InvalidConfig, errors.New(backend))
	}
}

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Close() error { return nil }
