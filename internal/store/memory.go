package store

import "sync"

// MemoryStore keeps values for the life of the process only.
type MemoryStore struct {
	values sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	if v, ok := m.values.Load(key); ok {
		return v.(string), true, nil
	}
	return "", false, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	for _, k := range keys {
		m.values.Delete(k)
	}
	return nil
}
