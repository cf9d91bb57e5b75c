// Package config provides configuration for the booksite server: the
// content repository coordinates, analytics credentials, and the tunables
// of the content search index.
package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultGitHubAPI  = "https://api.github.com"
	defaultGraphQLURL = "https://api.github.com/graphql"
	defaultBooksPath  = "books"
	defaultDevPath    = "dev"
)

// GitHub holds the coordinates of the content repository (the headless CMS)
// and the discussions repository used for comments.
type GitHub struct {
	APIBaseURL string // REST base, overridable for tests
	GraphQLURL string // GraphQL endpoint for discussions
	Owner      string
	Repo       string // content repository
	BlogRepo   string // repository hosting the giscus discussions
	BooksPath  string // directory of book folders inside Repo
	DevPath    string // directory of dev post categories inside Repo
	Token      string // optional; discussions queries need it
	CategoryID string // discussion category bound to giscus
}

// GoatCounter holds the analytics site coordinates.
type GoatCounter struct {
	BaseURL string // e.g. https://example.goatcounter.com
	Token   string // API token; dashboards degrade to zeros without it
}

// Index holds the tunables of the content search index.
type Index struct {
	DataDir       string        // snapshot cache directory
	Concurrency   int           // simultaneous chapter fetches during a build
	CacheTTL      time.Duration // snapshot age beyond which a rebuild is forced
	SnippetRadius int           // context characters kept on each side of a match
	MaxResults    int           // hard cap on returned search results
	MinQueryLen   int           // queries shorter than this return nothing
}

// Config is the full server configuration.
type Config struct {
	Port          string
	AdminPassword string
	GitHub        GitHub
	GoatCounter   GoatCounter
	Index         Index
}

// FromEnv builds a Config from environment variables and applies defaults.
func FromEnv() Config {
	cfg := Config{
		Port:          os.Getenv("PORT"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		GitHub: GitHub{
			Owner:      os.Getenv("GITHUB_OWNER"),
			Repo:       os.Getenv("GITHUB_REPO"),
			BlogRepo:   os.Getenv("GITHUB_BLOG_REPO"),
			BooksPath:  os.Getenv("GITHUB_BOOKS_PATH"),
			DevPath:    os.Getenv("GITHUB_DEV_PATH"),
			Token:      os.Getenv("GITHUB_TOKEN"),
			CategoryID: os.Getenv("GITHUB_DISCUSSION_CATEGORY_ID"),
		},
		GoatCounter: GoatCounter{
			BaseURL: os.Getenv("GOATCOUNTER_BASE_URL"),
			Token:   os.Getenv("GOATCOUNTER_API_TOKEN"),
		},
		Index: Index{
			DataDir: os.Getenv("DATA_DIR"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.GitHub.APIBaseURL == "" {
		c.GitHub.APIBaseURL = defaultGitHubAPI
	}
	if c.GitHub.GraphQLURL == "" {
		c.GitHub.GraphQLURL = defaultGraphQLURL
	}
	if c.GitHub.BooksPath == "" {
		c.GitHub.BooksPath = defaultBooksPath
	}
	if c.GitHub.DevPath == "" {
		c.GitHub.DevPath = defaultDevPath
	}
	if c.GitHub.BlogRepo == "" {
		c.GitHub.BlogRepo = c.GitHub.Repo
	}
	if c.Index.DataDir == "" {
		c.Index.DataDir = "./booksite_data"
	}
	if c.Index.Concurrency == 0 {
		c.Index.Concurrency = 5
	}
	if c.Index.CacheTTL == 0 {
		c.Index.CacheTTL = 24 * time.Hour
	}
	if c.Index.SnippetRadius == 0 {
		c.Index.SnippetRadius = 30
	}
	if c.Index.MaxResults == 0 {
		c.Index.MaxResults = 20
	}
	if c.Index.MinQueryLen == 0 {
		c.Index.MinQueryLen = 2
	}
}

// Validate reports configuration problems that make the content client
// unusable. Analytics and admin settings are optional; those surfaces
// degrade instead of failing.
func (c *Config) Validate() error {
	if c.GitHub.Owner == "" {
		return fmt.Errorf("GITHUB_OWNER is required")
	}
	if c.GitHub.Repo == "" {
		return fmt.Errorf("GITHUB_REPO is required")
	}
	if c.Index.Concurrency < 1 {
		return fmt.Errorf("index concurrency must be at least 1, got %d", c.Index.Concurrency)
	}
	return nil
}
