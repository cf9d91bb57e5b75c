package store

import (
	"sync"

	"github.com/chanani/booksite/model"
)

// ChapterStore holds the in-memory search index: an ordered sequence of
// indexed chapter records. Record order is completion order of the build
// workers, not chapter order; searches scan it linearly and there is no
// secondary index. The store is append-only during a build and replaced
// wholesale when a snapshot is hydrated.
type ChapterStore struct {
	mu      sync.RWMutex
	records []model.IndexedChapter
}

// NewChapterStore creates an empty ChapterStore.
func NewChapterStore() *ChapterStore {
	return &ChapterStore{records: make([]model.IndexedChapter, 0)}
}

// Append adds one record. Build workers call it concurrently.
func (s *ChapterStore) Append(rec model.IndexedChapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Replace swaps in a full record set, e.g. one hydrated from a snapshot.
func (s *ChapterStore) Replace(records []model.IndexedChapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if records == nil {
		records = make([]model.IndexedChapter, 0)
	}
	s.records = records
}

// Clear drops all records.
func (s *ChapterStore) Clear() {
	s.Replace(nil)
}

// Snapshot returns a copy of the current records in index order.
func (s *ChapterStore) Snapshot() []model.IndexedChapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.IndexedChapter, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *ChapterStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
