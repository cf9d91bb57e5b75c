package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	internalErrors "github.com/chanani/booksite/internal/errors"
)

const dirPerm = 0750

// FileStore keeps one gob-encoded envelope file per key under a data
// directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a FileStore rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".gob")
}

// Get implements Store. Expired and corrupt entries are deleted before the
// error is returned, so a later Set starts clean.
func (s *FileStore) Get(key string, maxAge time.Duration, out any) error {
	data, err := os.ReadFile(s.path(key)) // #nosec G304 -- path is derived from an application-controlled key
	if err != nil {
		if os.IsNotExist(err) {
			return internalErrors.ErrCacheMiss
		}
		return fmt.Errorf("failed to read cache entry '%s': %w", key, err)
	}

	var env entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		_ = s.Delete(key)
		return internalErrors.ErrCacheCorrupt
	}
	if s.now().Sub(env.SavedAt) > maxAge {
		_ = s.Delete(key)
		return internalErrors.ErrCacheExpired
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(out); err != nil {
		_ = s.Delete(key)
		return internalErrors.ErrCacheCorrupt
	}
	return nil
}

// Set implements Store.
func (s *FileStore) Set(key string, value any) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(value); err != nil {
		return fmt.Errorf("failed to encode cache payload for '%s': %w", key, err)
	}

	var buf bytes.Buffer
	env := entry{SavedAt: s.now(), Payload: payload.Bytes()}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return fmt.Errorf("failed to encode cache entry '%s': %w", key, err)
	}
	if err := os.WriteFile(s.path(key), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write cache entry '%s': %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry '%s': %w", key, err)
	}
	return nil
}

// SetClock replaces the store's clock. Tests use it to age entries.
func (s *FileStore) SetClock(now func() time.Time) {
	s.now = now
}
