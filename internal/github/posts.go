package github

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"golang.org/x/sync/errgroup"

	internalErrors "github.com/chanani/booksite/internal/errors"
	"github.com/chanani/booksite/model"
)

// postMeta holds the frontmatter fields of a dev post.
type postMeta struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
}

// parseFrontmatter splits a markdown document into its frontmatter and
// body. A document that fails to parse is treated as all body.
func parseFrontmatter(content string) (postMeta, string) {
	var meta postMeta
	body, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return postMeta{}, content
	}
	return meta, string(body)
}

// findMarkdown returns the first markdown file among entries.
func findMarkdown(entries []contentEntry) (string, bool) {
	for _, e := range entries {
		if e.Type == "file" && strings.HasSuffix(DecodeQuotedName(e.Name), ".md") {
			return DecodeQuotedName(e.Name), true
		}
	}
	return "", false
}

// ListPosts returns every dev post under the dev path. Two layouts are
// supported per category directory: a flat slug.md file, or a slug/ folder
// holding one markdown file and an optional cover. Failures at any level
// degrade to fewer posts, never to an error.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	categories, err := c.listDir(ctx, c.cfg.DevPath)
	if err != nil {
		return []model.Post{}, nil
	}

	var (
		mu    sync.Mutex
		posts []model.Post
	)
	var g errgroup.Group
	for _, catEntry := range categories {
		if catEntry.Type != "dir" {
			continue
		}
		category := DecodeQuotedName(catEntry.Name)
		g.Go(func() error {
			entries, err := c.listDir(ctx, c.cfg.DevPath, category)
			if err != nil {
				return nil
			}
			var cg errgroup.Group
			for _, entry := range entries {
				entry := entry
				cg.Go(func() error {
					if post, ok := c.fetchPostSummary(ctx, category, entry); ok {
						mu.Lock()
						posts = append(posts, post)
						mu.Unlock()
					}
					return nil
				})
			}
			_ = cg.Wait()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != "" && posts[j].Date != "" {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Title < posts[j].Title
	})
	if posts == nil {
		posts = make([]model.Post, 0)
	}
	return posts, nil
}

// fetchPostSummary resolves one category entry into a post summary.
func (c *Client) fetchPostSummary(ctx context.Context, category string, entry contentEntry) (model.Post, bool) {
	name := DecodeQuotedName(entry.Name)

	// Flat file: dev/category/slug.md
	if entry.Type == "file" && strings.HasSuffix(name, ".md") {
		_, data, err := c.getFile(ctx, c.cfg.DevPath, category, name)
		if err != nil {
			return model.Post{}, false
		}
		slug := strings.TrimSuffix(name, ".md")
		meta, _ := parseFrontmatter(string(data))
		return buildPost(slug, category, meta, ""), true
	}

	// Folder: dev/category/slug/any.md plus optional cover image
	if entry.Type == "dir" {
		files, err := c.listDir(ctx, c.cfg.DevPath, category, name)
		if err != nil {
			return model.Post{}, false
		}
		mdName, ok := findMarkdown(files)
		if !ok {
			return model.Post{}, false
		}
		_, data, err := c.getFile(ctx, c.cfg.DevPath, category, name, mdName)
		if err != nil {
			return model.Post{}, false
		}
		meta, _ := parseFrontmatter(string(data))
		return buildPost(name, category, meta, findCover(files)), true
	}

	return model.Post{}, false
}

func buildPost(slug, category string, meta postMeta, cover string) model.Post {
	post := model.Post{
		Slug:        slug,
		Category:    category,
		Title:       meta.Title,
		Date:        meta.Date,
		Tags:        meta.Tags,
		Description: meta.Description,
		Cover:       cover,
	}
	if post.Title == "" {
		post.Title = slug
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return post
}

// GetPost fetches one dev post with its body and commit dates. The folder
// layout is tried first, then the flat file; when neither resolves the
// post does not exist.
func (c *Client) GetPost(ctx context.Context, category, slug string) (*model.Post, error) {
	var (
		raw      string
		cover    string
		filePath string
	)

	if files, err := c.listDir(ctx, c.cfg.DevPath, category, slug); err == nil {
		mdName, ok := findMarkdown(files)
		if ok {
			if _, data, err := c.getFile(ctx, c.cfg.DevPath, category, slug, mdName); err == nil {
				raw = string(data)
				cover = findCover(files)
				filePath = strings.Join([]string{c.cfg.DevPath, category, slug, mdName}, "/")
			}
		}
	}
	if filePath == "" {
		_, data, err := c.getFile(ctx, c.cfg.DevPath, category, slug+".md")
		if err != nil {
			return nil, internalErrors.NewPostNotFoundError(category, slug)
		}
		raw = string(data)
		filePath = strings.Join([]string{c.cfg.DevPath, category, slug + ".md"}, "/")
	}

	created, updated := c.commitDates(ctx, filePath, true)
	meta, body := parseFrontmatter(raw)

	post := buildPost(slug, category, meta, cover)
	post.Content = body
	post.CreatedAt = formatDate(created)
	post.UpdatedAt = formatDate(updated)
	return &post, nil
}
