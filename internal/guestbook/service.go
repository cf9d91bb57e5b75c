// Package guestbook paginates the comments of the guestbook discussion.
package guestbook

import (
	"context"

	"github.com/chanani/booksite/model"
	"github.com/chanani/booksite/services"
)

// PageSize is the number of comments per guestbook page.
const PageSize = 10

// Service serves guestbook pages out of the discussion client.
type Service struct {
	discussions services.DiscussionClient
}

// NewService creates a guestbook service.
func NewService(discussions services.DiscussionClient) *Service {
	return &Service{discussions: discussions}
}

// Page returns page n of the guestbook, newest comments first, with the
// page number clamped into the valid range. Any upstream failure yields
// an empty first page.
func (s *Service) Page(ctx context.Context, n int) model.GuestbookPage {
	empty := model.GuestbookPage{Comments: []model.GuestbookComment{}, Page: 1, TotalPages: 0}

	comments, err := s.discussions.GuestbookComments(ctx)
	if err != nil || len(comments) == 0 {
		return empty
	}

	totalPages := (len(comments) + PageSize - 1) / PageSize
	if n < 1 {
		n = 1
	}
	if n > totalPages {
		n = totalPages
	}

	start := (n - 1) * PageSize
	end := start + PageSize
	if end > len(comments) {
		end = len(comments)
	}

	return model.GuestbookPage{
		Comments:   comments[start:end],
		Page:       n,
		TotalPages: totalPages,
	}
}
