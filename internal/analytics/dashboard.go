package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chanani/booksite/config"
	"github.com/chanani/booksite/model"
)

const (
	dashboardMemoTTL = 60 * time.Second
	allTimeStart     = "2020-01-01T00:00:00Z"
	topPostLimit     = 10
	topBookLimit     = 3
)

var bookPathRe = regexp.MustCompile(`^/book/([^/]+)`)

// Service aggregates GoatCounter stats into the site's dashboard shapes.
// The public dashboard aggregate is memoized briefly since it fans out to
// several upstream calls.
type Service struct {
	gc     *Client
	github config.GitHub
	http   *http.Client
	now    func() time.Time

	memoMu sync.Mutex
	memoAt time.Time
	memo   model.DashboardData
}

// NewService creates a dashboard aggregation service.
func NewService(gc *Client, github config.GitHub) *Service {
	return &Service{
		gc:     gc,
		github: github,
		http:   &http.Client{},
		now:    time.Now,
	}
}

// Dashboard returns the memoized public dashboard aggregate.
func (s *Service) Dashboard(ctx context.Context) model.DashboardData {
	s.memoMu.Lock()
	if !s.memoAt.IsZero() && s.now().Sub(s.memoAt) < dashboardMemoTTL {
		data := s.memo
		s.memoMu.Unlock()
		return data
	}
	s.memoMu.Unlock()

	data := s.buildDashboard(ctx)

	s.memoMu.Lock()
	s.memo = data
	s.memoAt = s.now()
	s.memoMu.Unlock()
	return data
}

func (s *Service) buildDashboard(ctx context.Context) model.DashboardData {
	empty := model.DashboardData{
		Visitors: model.VisitorStats{},
		TopPosts: []model.PageHit{},
		TopBooks: []model.BookHit{},
	}

	now := s.now().UTC()
	todayStart := now.Truncate(24 * time.Hour)
	weekAgo := todayStart.AddDate(0, 0, -7)
	allTime, _ := time.Parse(time.RFC3339, allTimeStart)

	var (
		recent *TotalStats
		total  *TotalStats
		hits   []HitRow
	)
	var g errgroup.Group
	g.Go(func() error { recent, _ = s.gc.Total(ctx, weekAgo, now); return nil })
	g.Go(func() error { total, _ = s.gc.Total(ctx, allTime, now); return nil })
	g.Go(func() error { hits, _ = s.gc.Hits(ctx, weekAgo, now, 100); return nil })
	_ = g.Wait()

	data := empty
	data.Visitors = visitorStats(recent, total, todayStart)
	data.TopPosts = topPosts(hits)
	data.TopBooks = topBooks(hits)
	return data
}

// visitorStats picks today's and yesterday's day buckets out of the
// recent range and the grand total out of the all-time range.
func visitorStats(recent, total *TotalStats, todayStart time.Time) model.VisitorStats {
	stats := model.VisitorStats{}
	if recent != nil {
		todayStr := todayStart.Format("2006-01-02")
		yesterdayStr := todayStart.AddDate(0, 0, -1).Format("2006-01-02")
		for _, day := range recent.Stats {
			switch day.Day {
			case todayStr:
				stats.Today = day.Daily
			case yesterdayStr:
				stats.Yesterday = day.Daily
			}
		}
	}
	if total != nil {
		stats.Total = total.Total
	}
	return stats
}

// decodePath undoes URL escaping of an analytics path, falling back to
// the raw value.
func decodePath(p string) string {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return decoded
}

func topPosts(hits []HitRow) []model.PageHit {
	posts := make([]model.PageHit, 0, topPostLimit)
	for _, h := range hits {
		decoded := decodePath(h.Path)
		if !strings.HasPrefix(decoded, "/post/") {
			continue
		}
		title := h.Title
		if title == "" {
			title = decoded
		}
		posts = append(posts, model.PageHit{Path: decoded, Title: title, Count: h.Count})
		if len(posts) == topPostLimit {
			break
		}
	}
	return posts
}

func topBooks(hits []HitRow) []model.BookHit {
	bySlug := make(map[string]*model.BookHit)
	for _, h := range hits {
		decoded := decodePath(h.Path)
		m := bookPathRe.FindStringSubmatch(decoded)
		if m == nil {
			continue
		}
		slug := m[1]
		hit, ok := bySlug[slug]
		if !ok {
			hit = &model.BookHit{Slug: slug}
			bySlug[slug] = hit
		}
		hit.Count += h.Count
		if hit.Title == "" || decoded == "/book/"+slug {
			if h.Title != "" {
				hit.Title = h.Title
			} else {
				hit.Title = slug
			}
		}
	}

	books := make([]model.BookHit, 0, len(bySlug))
	for _, hit := range bySlug {
		books = append(books, *hit)
	}
	sort.SliceStable(books, func(i, j int) bool { return books[i].Count > books[j].Count })
	if len(books) > topBookLimit {
		books = books[:topBookLimit]
	}
	return books
}

// AdminStats returns the password-gated aggregate: visitors, raw hit rows
// over the last 90 days, the four breakdowns, and the GitHub core rate
// limit. Every upstream failure degrades to an empty section.
func (s *Service) AdminStats(ctx context.Context) model.AdminStats {
	now := s.now().UTC()
	todayStart := now.Truncate(24 * time.Hour)
	weekAgo := todayStart.AddDate(0, 0, -7)
	threeMonthsAgo := todayStart.AddDate(0, 0, -90)
	allTime, _ := time.Parse(time.RFC3339, allTimeStart)

	stats := model.AdminStats{
		Hits:      []model.PageHit{},
		Browsers:  []model.StatRow{},
		Systems:   []model.StatRow{},
		Locations: []model.StatRow{},
		Languages: []model.StatRow{},
	}

	var (
		recent *TotalStats
		total  *TotalStats
		hits   []HitRow
	)
	var g errgroup.Group
	g.Go(func() error { recent, _ = s.gc.Total(ctx, weekAgo, now); return nil })
	g.Go(func() error { total, _ = s.gc.Total(ctx, allTime, now); return nil })
	g.Go(func() error { hits, _ = s.gc.Hits(ctx, threeMonthsAgo, now, 20); return nil })
	for _, kind := range []string{"browsers", "systems", "locations", "languages"} {
		kind := kind
		g.Go(func() error {
			rows, err := s.gc.Breakdown(ctx, kind, threeMonthsAgo, now, 10)
			if err != nil {
				return nil
			}
			out := make([]model.StatRow, 0, len(rows))
			for _, r := range rows {
				out = append(out, model.StatRow{ID: r.ID, Name: r.Name, Count: r.Count})
			}
			switch kind {
			case "browsers":
				stats.Browsers = out
			case "systems":
				stats.Systems = out
			case "locations":
				stats.Locations = out
			case "languages":
				stats.Languages = out
			}
			return nil
		})
	}
	g.Go(func() error { stats.RateLimit = s.fetchRateLimit(ctx); return nil })
	_ = g.Wait()

	stats.Visitors = visitorStats(recent, total, todayStart)
	for _, h := range hits {
		title := h.Title
		if title == "" {
			title = decodePath(h.Path)
		}
		stats.Hits = append(stats.Hits, model.PageHit{Path: decodePath(h.Path), Title: title, Count: h.Count})
	}
	return stats
}

type rateLimitResponse struct {
	Resources struct {
		Core model.RateLimit `json:"core"`
	} `json:"resources"`
}

// fetchRateLimit reads the GitHub core rate limit, nil on any failure.
func (s *Service) fetchRateLimit(ctx context.Context) *model.RateLimit {
	if s.github.Token == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.github.APIBaseURL+"/rate_limit", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+s.github.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var out rateLimitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	return &out.Resources.Core
}
