package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/chanani/booksite/internal/errors"
	"github.com/chanani/booksite/model"
)

// ListBooksHandler returns all books of the content repository.
func (api *API) ListBooksHandler(c *gin.Context) {
	books, err := api.content.ListBooks(c.Request.Context())
	if err != nil {
		if errors.Is(err, internalErrors.ErrContentUnavailable) {
			SendError(c, http.StatusServiceUnavailable, ErrorCodeContentUnavailable, err.Error())
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "Failed to list books: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// GetBookHandler returns one book's detail with its chapter listing and
// per-chapter comment counts. Comment counts degrade to empty on failure.
func (api *API) GetBookHandler(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	var (
		detail *model.BookDetail
		err    error
		counts map[string]int
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detail, err = api.content.GetBookDetail(ctx, slug)
	}()
	go func() {
		defer wg.Done()
		counts = api.discussions.ChapterDiscussionCounts(ctx, slug)
	}()
	wg.Wait()

	if err != nil {
		if errors.Is(err, internalErrors.ErrContentUnavailable) {
			SendError(c, http.StatusServiceUnavailable, ErrorCodeContentUnavailable, err.Error())
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "Failed to load book: "+err.Error())
		return
	}

	detail.CommentCounts = counts
	c.JSON(http.StatusOK, detail)
}

// GetChapterHandler returns one chapter's markdown body and dates.
func (api *API) GetChapterHandler(c *gin.Context) {
	slug := c.Param("slug")
	chapterPath := strings.TrimPrefix(c.Param("chapterPath"), "/")
	if chapterPath == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Chapter path is required")
		return
	}

	chapter, err := api.content.GetChapterContent(c.Request.Context(), slug, chapterPath)
	if err != nil {
		if errors.Is(err, internalErrors.ErrChapterNotFound) {
			SendError(c, http.StatusNotFound, ErrorCodeChapterNotFound, err.Error())
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "Failed to load chapter: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// ListPostsHandler returns all dev posts with their comment counts.
func (api *API) ListPostsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		posts  []model.Post
		counts map[string]int
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		posts, _ = api.posts.ListPosts(ctx)
	}()
	go func() {
		defer wg.Done()
		counts = api.discussions.PostDiscussionCounts(ctx)
	}()
	wg.Wait()

	c.JSON(http.StatusOK, gin.H{
		"posts":          posts,
		"total":          len(posts),
		"comment_counts": counts,
	})
}

// GetPostHandler returns one dev post with its body.
func (api *API) GetPostHandler(c *gin.Context) {
	category := c.Param("category")
	slug := c.Param("slug")

	post, err := api.posts.GetPost(c.Request.Context(), category, slug)
	if err != nil {
		if errors.Is(err, internalErrors.ErrPostNotFound) {
			SendError(c, http.StatusNotFound, ErrorCodePostNotFound, err.Error())
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "Failed to load post: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, post)
}
