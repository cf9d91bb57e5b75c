// Package search answers substring queries against the chapter index.
package search

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chanani/booksite/config"
	"github.com/chanani/booksite/model"
	"github.com/chanani/booksite/store"
)

const ellipsis = "..."

// Service scans the chapter store linearly. Results come back in index
// order (completion order of the build, not relevance), capped hard at
// MaxResults; the scan short-circuits once the cap is reached.
type Service struct {
	store         *store.ChapterStore
	minQueryLen   int
	maxResults    int
	snippetRadius int
}

// Response wraps one query's results with its ID and timing.
type Response struct {
	Results []model.SearchResult `json:"results"`
	Total   int                  `json:"total"`
	Took    int64                `json:"took"` // milliseconds
	QueryID string               `json:"query_id"`
}

// NewService creates a search service over the given chapter store.
func NewService(chapters *store.ChapterStore, cfg config.Index) *Service {
	return &Service{
		store:         chapters,
		minQueryLen:   cfg.MinQueryLen,
		maxResults:    cfg.MaxResults,
		snippetRadius: cfg.SnippetRadius,
	}
}

// Search returns the chapters whose plain text contains the query,
// case-insensitively. Queries shorter than the minimum return nothing
// without touching the index. Length is counted in runes, not bytes, so
// a single CJK character is still a one-character query.
func (s *Service) Search(query string) []model.SearchResult {
	results := make([]model.SearchResult, 0)
	if utf8.RuneCountInString(query) < s.minQueryLen {
		return results
	}

	qLower := strings.ToLower(query)
	for _, rec := range s.store.Snapshot() {
		if !strings.Contains(strings.ToLower(rec.PlainText), qLower) {
			continue
		}
		results = append(results, model.SearchResult{
			BookSlug:    rec.BookSlug,
			BookTitle:   rec.BookTitle,
			ChapterPath: rec.ChapterPath,
			ChapterName: rec.ChapterName,
			Snippet:     s.extractSnippet(rec.PlainText, query),
		})
		if len(results) >= s.maxResults {
			break
		}
	}
	return results
}

// Query runs a search and wraps it in a timed, identified response.
func (s *Service) Query(query string) Response {
	start := time.Now()
	results := s.Search(query)
	return Response{
		Results: results,
		Total:   len(results),
		Took:    time.Since(start).Milliseconds(),
		QueryID: uuid.New().String(),
	}
}

// matchIndex returns the byte offset in text of the first
// case-insensitive occurrence of query, or -1. The search runs against a
// lowered copy; when lowering changes byte lengths (e.g. U+0130), the
// offset is mapped back through the rune position.
func matchIndex(text, query string) int {
	lowered := strings.ToLower(text)
	idx := strings.Index(lowered, strings.ToLower(query))
	if idx < 0 {
		return -1
	}
	if len(lowered) == len(text) {
		return idx
	}
	runePos := utf8.RuneCountInString(lowered[:idx])
	for i := range text {
		if runePos == 0 {
			return i
		}
		runePos--
	}
	return len(text)
}

// extractSnippet takes up to snippetRadius characters of context on each
// side of the first case-insensitive occurrence of the query, marking
// clipped edges with an ellipsis. No occurrence yields an empty snippet.
func (s *Service) extractSnippet(text, query string) string {
	idx := matchIndex(text, query)
	if idx == -1 {
		return ""
	}

	start := idx - s.snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + s.snippetRadius
	if end > len(text) {
		end = len(text)
	}
	// Clip on rune boundaries so multi-byte text survives slicing.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(text) {
		snippet += ellipsis
	}
	return snippet
}
