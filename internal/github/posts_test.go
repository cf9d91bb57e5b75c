package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	internalErrors "github.com/chanani/booksite/internal/errors"
)

const flatPostMarkdown = `---
title: Understanding Generics
date: "2024-02-10"
tags:
  - go
description: Type parameters in practice.
---
Generics landed in Go 1.18.`

const folderPostMarkdown = `---
title: Web Frameworks
date: "2024-04-20"
---
A tour of routers.`

// newPostsServer serves a dev tree with one flat post and one folder post:
//
//	dev/go/generics.md
//	dev/go/web/{index.md, cover.png}
func newPostsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/o/r/contents/dev", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{entry("go", "dir"), entry("README.md", "file")})
	})
	mux.HandleFunc("/repos/o/r/contents/dev/go", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			entry("generics.md", "file"),
			entry("web", "dir"),
		})
	})
	mux.HandleFunc("/repos/o/r/contents/dev/go/generics.md", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, blobResponse("generics.md", flatPostMarkdown))
	})
	mux.HandleFunc("/repos/o/r/contents/dev/go/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			entry("index.md", "file"),
			fileEntry("cover.png", "http://cdn/web-cover.png"),
		})
	})
	mux.HandleFunc("/repos/o/r/contents/dev/go/web/index.md", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, blobResponse("index.md", folderPostMarkdown))
	})
	mux.HandleFunc("/repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, commitResponse("2024-05-01T10:00:00Z"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestListPosts(t *testing.T) {
	srv := newPostsServer(t)
	c := newTestClient(srv.URL)

	posts, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListPosts() returned %d posts, want 2", len(posts))
	}

	// Newest first.
	if posts[0].Slug != "web" || posts[0].Date != "2024-04-20" {
		t.Errorf("first post = %+v", posts[0])
	}
	if posts[0].Cover != "http://cdn/web-cover.png" {
		t.Errorf("folder post cover = %s", posts[0].Cover)
	}
	if posts[1].Slug != "generics" || posts[1].Title != "Understanding Generics" {
		t.Errorf("second post = %+v", posts[1])
	}
	if posts[1].Description != "Type parameters in practice." {
		t.Errorf("description = %s", posts[1].Description)
	}
	if len(posts[1].Tags) != 1 || posts[1].Tags[0] != "go" {
		t.Errorf("tags = %v", posts[1].Tags)
	}
	// Summaries never carry the body.
	if posts[0].Content != "" || posts[1].Content != "" {
		t.Error("post summary carries content")
	}
}

func TestListPostsUnreachableTreeYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	posts, err := newTestClient(srv.URL).ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts() error = %v, want graceful degradation", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("ListPosts() = %v, want empty non-nil slice", posts)
	}
}

func TestGetPostFolderLayout(t *testing.T) {
	srv := newPostsServer(t)
	c := newTestClient(srv.URL)

	post, err := c.GetPost(context.Background(), "go", "web")
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post.Title != "Web Frameworks" || post.Category != "go" {
		t.Errorf("post = %+v", post)
	}
	if post.Content != "A tour of routers." {
		t.Errorf("Content = %q", post.Content)
	}
	if post.Cover != "http://cdn/web-cover.png" {
		t.Errorf("Cover = %s", post.Cover)
	}
	if post.UpdatedAt != "2024/05/01" {
		t.Errorf("UpdatedAt = %s", post.UpdatedAt)
	}
}

func TestGetPostFlatFallback(t *testing.T) {
	srv := newPostsServer(t)
	c := newTestClient(srv.URL)

	post, err := c.GetPost(context.Background(), "go", "generics")
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post.Title != "Understanding Generics" {
		t.Errorf("Title = %s", post.Title)
	}
	if post.Content != "Generics landed in Go 1.18." {
		t.Errorf("Content = %q", post.Content)
	}
}

func TestGetPostNotFound(t *testing.T) {
	srv := newPostsServer(t)
	c := newTestClient(srv.URL)

	_, err := c.GetPost(context.Background(), "go", "does-not-exist")
	if !errors.Is(err, internalErrors.ErrPostNotFound) {
		t.Errorf("GetPost() error = %v, want ErrPostNotFound", err)
	}
}

func TestParseFrontmatter(t *testing.T) {
	meta, body := parseFrontmatter(flatPostMarkdown)
	if meta.Title != "Understanding Generics" || meta.Date != "2024-02-10" {
		t.Errorf("meta = %+v", meta)
	}
	if body != "Generics landed in Go 1.18." {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontmatterAbsent(t *testing.T) {
	meta, body := parseFrontmatter("just a body, no frontmatter")
	if meta.Title != "" {
		t.Errorf("meta = %+v, want zero", meta)
	}
	if body != "just a body, no frontmatter" {
		t.Errorf("body = %q", body)
	}
}

func TestBuildPostFallbacks(t *testing.T) {
	post := buildPost("my-slug", "go", postMeta{}, "")
	if post.Title != "my-slug" {
		t.Errorf("Title = %s, want the slug fallback", post.Title)
	}
	if post.Tags == nil {
		t.Error("Tags is nil, want empty slice")
	}
}
