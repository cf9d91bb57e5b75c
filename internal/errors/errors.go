package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrContentUnavailable is returned when a content repository listing
	// cannot be fetched at all.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrChapterNotFound is returned when a chapter file does not exist.
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrPostNotFound is returned when neither the folder-style nor the
	// flat-file form of a dev post resolves.
	ErrPostNotFound = errors.New("post not found")

	// ErrCacheMiss is returned when a cache entry is absent.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheExpired is returned when a cache entry is older than its TTL.
	// Callers treat it as a miss; the stale entry has already been deleted.
	ErrCacheExpired = errors.New("cache expired")

	// ErrCacheCorrupt is returned when a cache entry cannot be decoded.
	// Callers treat it as a miss; the broken entry has already been deleted.
	ErrCacheCorrupt = errors.New("cache corrupt")
)

// ContentUnavailableError represents a failed repository listing with context
type ContentUnavailableError struct {
	Path  string
	Cause error
}

func (e *ContentUnavailableError) Error() string {
	return fmt.Sprintf("content listing for '%s' unavailable: %v", e.Path, e.Cause)
}

func (e *ContentUnavailableError) Is(target error) bool {
	return target == ErrContentUnavailable
}

func (e *ContentUnavailableError) Unwrap() error {
	return e.Cause
}

// NewContentUnavailableError creates a new ContentUnavailableError
func NewContentUnavailableError(path string, cause error) *ContentUnavailableError {
	return &ContentUnavailableError{Path: path, Cause: cause}
}

// ChapterNotFoundError represents a chapter lookup failure with context
type ChapterNotFoundError struct {
	BookSlug    string
	ChapterPath string
}

func (e *ChapterNotFoundError) Error() string {
	return fmt.Sprintf("chapter '%s' not found in book '%s'", e.ChapterPath, e.BookSlug)
}

func (e *ChapterNotFoundError) Is(target error) bool {
	return target == ErrChapterNotFound
}

// NewChapterNotFoundError creates a new ChapterNotFoundError
func NewChapterNotFoundError(bookSlug, chapterPath string) *ChapterNotFoundError {
	return &ChapterNotFoundError{BookSlug: bookSlug, ChapterPath: chapterPath}
}

// PostNotFoundError represents a dev post lookup failure with context
type PostNotFoundError struct {
	Category string
	Slug     string
}

func (e *PostNotFoundError) Error() string {
	return fmt.Sprintf("post '%s/%s' not found", e.Category, e.Slug)
}

func (e *PostNotFoundError) Is(target error) bool {
	return target == ErrPostNotFound
}

// NewPostNotFoundError creates a new PostNotFoundError
func NewPostNotFoundError(category, slug string) *PostNotFoundError {
	return &PostNotFoundError{Category: category, Slug: slug}
}
