package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/chanani/booksite/model"
)

const guestbookTitle = "guestbook"

// discussionNode is one discussion of the giscus category. Discussion
// titles follow the giscus path convention: "book/{slug}/read/{chapter}"
// and "post/{category}/{slug}" bind comments to content; the discussion
// titled "guestbook" is the free-form guestbook.
type discussionNode struct {
	Title    string `json:"title"`
	Comments struct {
		TotalCount int `json:"totalCount"`
		Nodes      []struct {
			Author struct {
				Login     string `json:"login"`
				AvatarURL string `json:"avatarUrl"`
			} `json:"author"`
			Body      string `json:"body"`
			CreatedAt string `json:"createdAt"`
		} `json:"nodes"`
	} `json:"comments"`
}

type discussionsResponse struct {
	Data struct {
		Repository struct {
			Discussions struct {
				Nodes []discussionNode `json:"nodes"`
			} `json:"discussions"`
		} `json:"repository"`
	} `json:"data"`
}

// fetchDiscussions runs the category discussions query. withComments pulls
// the last 100 comment bodies of each discussion; counts-only queries skip
// them.
func (c *Client) fetchDiscussions(ctx context.Context, withComments bool) ([]discussionNode, error) {
	if c.cfg.Token == "" {
		return nil, fmt.Errorf("discussions query requires a token")
	}

	commentFields := "comments { totalCount }"
	if withComments {
		commentFields = `comments(last: 100) {
            totalCount
            nodes { author { login avatarUrl } body createdAt }
          }`
	}
	query := fmt.Sprintf(`{
      repository(owner: %q, name: %q) {
        discussions(first: 100, categoryId: %q) {
          nodes {
            title
            %s
          }
        }
      }
    }`, c.cfg.Owner, c.cfg.BlogRepo, c.cfg.CategoryID, commentFields)

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql query: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded discussionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	return decoded.Data.Repository.Discussions.Nodes, nil
}

// discussionKey normalizes a discussion title: the leading slash is
// stripped and URL escapes are decoded, falling back to the raw title.
func discussionKey(title string) string {
	trimmed := strings.TrimPrefix(title, "/")
	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		return trimmed
	}
	return decoded
}

// countsByPrefix sums comment counts of discussions whose normalized title
// starts with prefix, keyed by the remainder of the title.
func countsByPrefix(nodes []discussionNode, prefix string) map[string]int {
	counts := make(map[string]int)
	for _, d := range nodes {
		key := discussionKey(d.Title)
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		counts[strings.TrimPrefix(key, prefix)] += d.Comments.TotalCount
	}
	return counts
}

// ChapterDiscussionCounts maps chapter paths of one book to comment
// counts. A missing token or any query failure yields an empty map.
func (c *Client) ChapterDiscussionCounts(ctx context.Context, bookSlug string) map[string]int {
	nodes, err := c.fetchDiscussions(ctx, false)
	if err != nil {
		return map[string]int{}
	}
	return countsByPrefix(nodes, "book/"+bookSlug+"/read/")
}

// PostDiscussionCounts maps "category/slug" post keys to comment counts.
// A missing token or any query failure yields an empty map.
func (c *Client) PostDiscussionCounts(ctx context.Context) map[string]int {
	nodes, err := c.fetchDiscussions(ctx, false)
	if err != nil {
		return map[string]int{}
	}
	return countsByPrefix(nodes, "post/")
}

// GuestbookComments returns the comments of the guestbook discussion,
// newest first.
func (c *Client) GuestbookComments(ctx context.Context) ([]model.GuestbookComment, error) {
	nodes, err := c.fetchDiscussions(ctx, true)
	if err != nil {
		return nil, err
	}

	for _, d := range nodes {
		if d.Title != guestbookTitle {
			continue
		}
		comments := make([]model.GuestbookComment, 0, len(d.Comments.Nodes))
		// GraphQL returns oldest first; reverse for newest-first display.
		for i := len(d.Comments.Nodes) - 1; i >= 0; i-- {
			n := d.Comments.Nodes[i]
			author := n.Author.Login
			if author == "" {
				author = "anonymous"
			}
			comments = append(comments, model.GuestbookComment{
				Author:    author,
				Avatar:    n.Author.AvatarURL,
				Body:      n.Body,
				CreatedAt: n.CreatedAt,
			})
		}
		return comments, nil
	}
	return []model.GuestbookComment{}, nil
}
