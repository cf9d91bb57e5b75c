// Package cache provides a small TTL-aware key-value snapshot store. The
// search index persists its records here so that a restart inside the TTL
// window skips the expensive rebuild.
package cache

import (
	"time"
)

// Store is a key-value snapshot store with TTL enforced on read. A stale
// or undecodable entry is deleted by Get and reported as expired/corrupt;
// callers treat either as a plain miss.
type Store interface {
	// Get decodes the entry for key into out if it is younger than maxAge.
	// Returns ErrCacheMiss, ErrCacheExpired or ErrCacheCorrupt otherwise.
	Get(key string, maxAge time.Duration, out any) error

	// Set overwrites the entry for key wholesale, stamped with the current
	// time.
	Set(key string, value any) error

	// Delete removes the entry for key. Deleting an absent key is not an
	// error.
	Delete(key string) error
}

// entry is the persisted envelope: the payload plus its write time.
type entry struct {
	SavedAt time.Time
	Payload []byte
}
