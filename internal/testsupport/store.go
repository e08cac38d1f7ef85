package testsupport

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-memory object store recording every call.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	Puts    []string
	Deletes []string

	// Injected failures.
	PutErr    error
	DeleteErr error
	ListErr   error
}

// NewMemoryStore returns an empty store seeded with keys.
func NewMemoryStore(keys ...string) *MemoryStore {
	s := &MemoryStore{objects: make(map[string][]byte)}
	for _, key := range keys {
		s.objects[key] = nil
	}
	return s
}

// Put copies the local file into the store.
func (s *MemoryStore) Put(_ context.Context, localPath, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts = append(s.Puts, key)
	if s.PutErr != nil {
		return s.PutErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes = append(s.Deletes, key)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.objects, key)
	return nil
}

// List returns the sorted keys under prefix.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Has reports whether key is stored.
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Object returns the stored bytes of key.
func (s *MemoryStore) Object(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key]
}
