// Package analytics aggregates visit statistics from GoatCounter for the
// public dashboard and the admin stats view. Everything here degrades:
// a missing token or a failed upstream call produces zero values, never
// an error surfaced to the site.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chanani/booksite/config"
)

// Client talks to the GoatCounter API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	sleep   func(time.Duration)
}

// NewClient creates a GoatCounter client. The token may be empty; stats
// endpoints then fail and callers degrade to zeros. The public counter
// endpoint needs no token.
func NewClient(cfg config.GoatCounter) *Client {
	return &Client{
		http:    &http.Client{},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		sleep:   time.Sleep,
	}
}

// get performs an authorized GET with a single retry: rate-limited
// responses wait a second, transport errors half a second.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.token == "" {
		return fmt.Errorf("goatcounter token not configured")
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt == 0 {
				c.sleep(500 * time.Millisecond)
				continue
			}
			return lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			c.sleep(time.Second)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
		}
		if readErr != nil {
			return readErr
		}
		return json.Unmarshal(body, out)
	}
	return lastErr
}

// DayStat is one day bucket of the total-stats endpoint.
type DayStat struct {
	Day   string `json:"day"`
	Daily int    `json:"daily"`
}

// TotalStats is the response of the total-stats endpoint.
type TotalStats struct {
	Total int       `json:"total"`
	Stats []DayStat `json:"stats"`
}

// HitRow is one ranked path of the hits endpoint.
type HitRow struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

type hitsResponse struct {
	Hits []HitRow `json:"hits"`
}

// BreakdownRow is one row of the browsers/systems/locations/languages
// endpoints.
type BreakdownRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type breakdownResponse struct {
	Stats []BreakdownRow `json:"stats"`
}

func rangeQuery(start, end time.Time) string {
	return "start=" + url.QueryEscape(start.Format(time.RFC3339)) +
		"&end=" + url.QueryEscape(end.Format(time.RFC3339))
}

// Total fetches visit totals with per-day buckets for a date range.
func (c *Client) Total(ctx context.Context, start, end time.Time) (*TotalStats, error) {
	var out TotalStats
	if err := c.get(ctx, "/api/v0/stats/total/?"+rangeQuery(start, end), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Hits fetches the ranked paths of a date range.
func (c *Client) Hits(ctx context.Context, start, end time.Time, limit int) ([]HitRow, error) {
	var out hitsResponse
	path := fmt.Sprintf("/api/v0/stats/hits/?%s&limit=%d&daily=true", rangeQuery(start, end), limit)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Hits, nil
}

// Breakdown fetches one of the browsers/systems/locations/languages
// breakdowns.
func (c *Client) Breakdown(ctx context.Context, kind string, start, end time.Time, limit int) ([]BreakdownRow, error) {
	var out breakdownResponse
	path := fmt.Sprintf("/api/v0/stats/%s/?%s&limit=%d", kind, rangeQuery(start, end), limit)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Stats, nil
}

type counterResponse struct {
	Count string `json:"count"`
}

// Counter reads the public per-path visit counter. Any failure degrades
// to "0".
func (c *Client) Counter(ctx context.Context, path string) string {
	browserPath := (&url.URL{Path: path}).EscapedPath()
	counterURL := c.baseURL + "/counter/" + url.PathEscape(browserPath) + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, counterURL, nil)
	if err != nil {
		return "0"
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "0"
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "0"
	}

	var out counterResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Count == "" {
		return "0"
	}
	return out.Count
}

// CounterBatch reads several per-path counters in parallel. Every path is
// present in the result; failed lookups carry "0".
func (c *Client) CounterBatch(ctx context.Context, paths []string) map[string]string {
	results := make(map[string]string, len(paths))
	var mu sync.Mutex
	var g errgroup.Group
	for _, p := range paths {
		p := p
		g.Go(func() error {
			count := c.Counter(ctx, p)
			mu.Lock()
			results[p] = count
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
