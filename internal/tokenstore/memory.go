package tokenstore

import "sync"

// MemoryStore is a process-local Store.
type MemoryStore struct {
	values map[Key]string
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key]string)}
}

func (s *MemoryStore) Get(key Key) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Set(key Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return nil
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[Key]string)
	return nil
}
