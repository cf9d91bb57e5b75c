package services

import (
	"context"

	"github.com/chanani/booksite/model"
)

// ContentClient fetches book, chapter and post structures from the
// content repository.
type ContentClient interface {
	// ListBooks returns all books, sorted by descending date when every
	// book carries one, else by title.
	ListBooks(ctx context.Context) ([]model.Book, error)

	// GetBookDetail returns one book with its chapter listing partitioned
	// into root chapters and folder groups.
	GetBookDetail(ctx context.Context, slug string) (*model.BookDetail, error)

	// ListBookChapters returns the flattened chapter references of one
	// book (root and subfolder chapters together), for index builds.
	ListBookChapters(ctx context.Context, slug string) ([]model.ChapterRef, error)

	// GetChapterContent returns one chapter's raw markdown and commit dates.
	GetChapterContent(ctx context.Context, bookSlug, chapterPath string) (*model.ChapterContent, error)
}

// PostClient fetches developer posts from the content repository.
type PostClient interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, category, slug string) (*model.Post, error)
}

// DiscussionClient reads comment data bound to content via GitHub
// Discussions titles.
type DiscussionClient interface {
	// ChapterDiscussionCounts maps chapter paths of one book to their
	// comment counts. Failures yield an empty map, never an error.
	ChapterDiscussionCounts(ctx context.Context, bookSlug string) map[string]int

	// PostDiscussionCounts maps "category/slug" post keys to their
	// comment counts. Failures yield an empty map, never an error.
	PostDiscussionCounts(ctx context.Context) map[string]int

	// GuestbookComments returns all comments of the discussion titled
	// "guestbook", newest first.
	GuestbookComments(ctx context.Context) ([]model.GuestbookComment, error)
}

// IndexBuilder drives the content search index lifecycle.
type IndexBuilder interface {
	// LoadCached hydrates the index from a non-expired snapshot and
	// reports whether hydration succeeded.
	LoadCached() bool

	// Build enumerates every chapter of every book and fetches their
	// content through a bounded worker pool. It is a no-op unless the
	// builder is in the empty state, and it never returns an error: a
	// failed chapter is skipped and a total outage yields an empty index.
	Build(ctx context.Context, books []model.Book)

	// State returns the current lifecycle state.
	State() model.BuildState

	// Progress returns how many chapter tasks have completed out of the
	// enumerated total. Total is 0 until enumeration finishes.
	Progress() model.BuildProgress

	// Invalidate drops the in-memory index and the persisted snapshot,
	// returning the builder to the empty state.
	Invalidate()
}

// ContentSearcher answers substring queries against the chapter index.
type ContentSearcher interface {
	Search(query string) []model.SearchResult
}

// ViewCounter reads per-path visit counters from the analytics backend.
type ViewCounter interface {
	Counter(ctx context.Context, path string) string
	CounterBatch(ctx context.Context, paths []string) map[string]string
}
