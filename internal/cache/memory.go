package cache

import (
	"bytes"
	"encoding/gob"
	"sync"
	"time"

	internalErrors "github.com/chanani/booksite/internal/errors"
)

// MemoryStore is an in-process Store used by tests. It round-trips values
// through gob so that encoding behavior matches the file-backed store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(key string, maxAge time.Duration, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, ok := s.entries[key]
	if !ok {
		return internalErrors.ErrCacheMiss
	}
	if s.now().Sub(env.SavedAt) > maxAge {
		delete(s.entries, key)
		return internalErrors.ErrCacheExpired
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(out); err != nil {
		delete(s.entries, key)
		return internalErrors.ErrCacheCorrupt
	}
	return nil
}

// Set implements Store.
func (s *MemoryStore) Set(key string, value any) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{SavedAt: s.now(), Payload: payload.Bytes()}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// SetClock replaces the store's clock. Tests use it to age entries.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
