package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	internalErrors "github.com/chanani/booksite/internal/errors"
)

type payload struct {
	Name  string
	Count int
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	in := payload{Name: "search-index", Count: 42}
	if err := store.Set("key", in); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out payload
	if err := store.Get("key", time.Hour, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out != in {
		t.Errorf("Get() = %+v, want %+v", out, in)
	}
}

func TestFileStoreMiss(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	var out payload
	if err := store.Get("absent", time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestFileStoreExpiryDeletesEntry(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Set("key", payload{Name: "stale"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.SetClock(func() time.Time { return time.Now().Add(25 * time.Hour) })

	var out payload
	if err := store.Get("key", 24*time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheExpired) {
		t.Fatalf("Get() error = %v, want ErrCacheExpired", err)
	}
	// The stale entry is gone; the next read is a plain miss.
	if err := store.Get("key", 24*time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}

func TestFileStoreCorruptEntryDeleted(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "key.gob"), []byte("not gob data"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var out payload
	if err := store.Get("key", time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheCorrupt) {
		t.Fatalf("Get() error = %v, want ErrCacheCorrupt", err)
	}
	if err := store.Get("key", time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheMiss) {
		t.Errorf("Get() after corrupt read error = %v, want ErrCacheMiss", err)
	}
}

func TestFileStoreSetOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Set("key", payload{Count: 1}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set("key", payload{Count: 2}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out payload
	if err := store.Get("key", time.Hour, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Get() count = %d, want 2", out.Count)
	}
}

func TestFileStoreDeleteAbsentKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Delete("never-set"); err != nil {
		t.Errorf("Delete() of absent key error = %v, want nil", err)
	}
}

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Set("key", payload{Name: "mem", Count: 7}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out payload
	if err := store.Get("key", time.Hour, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Count != 7 {
		t.Errorf("Get() = %+v, want Count 7", out)
	}

	store.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	if err := store.Get("key", time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheExpired) {
		t.Fatalf("Get() error = %v, want ErrCacheExpired", err)
	}
	if err := store.Get("key", time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("key", payload{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Delete("key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var out payload
	if err := store.Get("key", time.Hour, &out); !errors.Is(err, internalErrors.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}
