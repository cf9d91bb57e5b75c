package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chanani/booksite/config"
)

func newStatsClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.GoatCounter{BaseURL: srv.URL, Token: "token"})
	c.sleep = func(time.Duration) {}
	return c
}

func TestTotal(t *testing.T) {
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 1234,
			"stats": []map[string]any{{"day": "2024-05-01", "daily": 10}},
		})
	}))

	got, err := c.Total(context.Background(), time.Now().Add(-24*time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if got.Total != 1234 || len(got.Stats) != 1 || got.Stats[0].Daily != 10 {
		t.Errorf("Total() = %+v", got)
	}
}

func TestGetRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 5})
	}))

	got, err := c.Total(context.Background(), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("Total() error = %v, want success after retry", err)
	}
	if got.Total != 5 {
		t.Errorf("Total() = %d, want 5", got.Total)
	}
	if calls.Load() != 2 {
		t.Errorf("upstream called %d times, want 2", calls.Load())
	}
}

func TestGetGivesUpAfterSecondRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	if _, err := c.Total(context.Background(), time.Now(), time.Now()); err == nil {
		t.Error("Total() error = nil, want failure after exhausted retry")
	}
	if calls.Load() != 2 {
		t.Errorf("upstream called %d times, want 2", calls.Load())
	}
}

func TestGetWithoutToken(t *testing.T) {
	c := NewClient(config.GoatCounter{BaseURL: "http://unused"})
	if _, err := c.Total(context.Background(), time.Now(), time.Now()); err == nil {
		t.Error("Total() without token, want error")
	}
}

func TestHits(t *testing.T) {
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "20" || r.URL.Query().Get("daily") != "true" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{{"path": "/post/go/generics", "title": "Generics", "count": 42}},
		})
	}))

	hits, err := c.Hits(context.Background(), time.Now().Add(-time.Hour), time.Now(), 20)
	if err != nil {
		t.Fatalf("Hits() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Count != 42 {
		t.Errorf("Hits() = %+v", hits)
	}
}

func TestBreakdown(t *testing.T) {
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stats": []map[string]any{{"id": "ff", "name": "Firefox", "count": 9}},
		})
	}))

	rows, err := c.Breakdown(context.Background(), "browsers", time.Now().Add(-time.Hour), time.Now(), 10)
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Firefox" {
		t.Errorf("Breakdown() = %+v", rows)
	}
}

func TestCounter(t *testing.T) {
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The public counter endpoint must not require the API token.
		if r.Header.Get("Authorization") != "" {
			t.Error("counter request carried an Authorization header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": "42"})
	}))

	if got := c.Counter(context.Background(), "/post/go/generics"); got != "42" {
		t.Errorf("Counter() = %s, want 42", got)
	}
}

func TestCounterDegradesToZero(t *testing.T) {
	t.Run("upstream 404", func(t *testing.T) {
		c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		if got := c.Counter(context.Background(), "/nope"); got != "0" {
			t.Errorf("Counter() = %s, want 0", got)
		}
	})

	t.Run("empty count field", func(t *testing.T) {
		c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"count": ""})
		}))
		if got := c.Counter(context.Background(), "/post/x"); got != "0" {
			t.Errorf("Counter() = %s, want 0", got)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		c := NewClient(config.GoatCounter{BaseURL: "http://127.0.0.1:0"})
		if got := c.Counter(context.Background(), "/post/x"); got != "0" {
			t.Errorf("Counter() = %s, want 0", got)
		}
	})
}

func TestCounterBatch(t *testing.T) {
	c := newStatsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"count": "7"})
	}))

	paths := []string{"/a", "/b", "/c"}
	got := c.CounterBatch(context.Background(), paths)
	if len(got) != 3 {
		t.Fatalf("CounterBatch() returned %d entries, want 3", len(got))
	}
	for _, p := range paths {
		if got[p] != "7" {
			t.Errorf("CounterBatch()[%s] = %s, want 7", p, got[p])
		}
	}
}
