package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.GitHub.APIBaseURL != "https://api.github.com" {
		t.Errorf("APIBaseURL = %s", cfg.GitHub.APIBaseURL)
	}
	if cfg.GitHub.BooksPath != "books" || cfg.GitHub.DevPath != "dev" {
		t.Errorf("content paths = %s, %s", cfg.GitHub.BooksPath, cfg.GitHub.DevPath)
	}
	if cfg.Index.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Index.Concurrency)
	}
	if cfg.Index.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", cfg.Index.CacheTTL)
	}
	if cfg.Index.SnippetRadius != 30 || cfg.Index.MaxResults != 20 || cfg.Index.MinQueryLen != 2 {
		t.Errorf("index tunables = %d/%d/%d, want 30/20/2",
			cfg.Index.SnippetRadius, cfg.Index.MaxResults, cfg.Index.MinQueryLen)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{Port: "9999"}
	cfg.GitHub.Repo = "reading"
	cfg.Index.Concurrency = 2
	cfg.ApplyDefaults()

	if cfg.Port != "9999" {
		t.Errorf("Port = %s, want 9999", cfg.Port)
	}
	if cfg.Index.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Index.Concurrency)
	}
	// BlogRepo falls back to the content repo when unset.
	if cfg.GitHub.BlogRepo != "reading" {
		t.Errorf("BlogRepo = %s, want reading", cfg.GitHub.BlogRepo)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{}
	valid.GitHub.Owner = "someone"
	valid.GitHub.Repo = "reading"
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	missingOwner := valid
	missingOwner.GitHub.Owner = ""
	if err := missingOwner.Validate(); err == nil {
		t.Error("Validate() with missing owner, want error")
	}

	missingRepo := valid
	missingRepo.GitHub.Repo = ""
	if err := missingRepo.Validate(); err == nil {
		t.Error("Validate() with missing repo, want error")
	}

	badConcurrency := valid
	badConcurrency.Index.Concurrency = -1
	if err := badConcurrency.Validate(); err == nil {
		t.Error("Validate() with negative concurrency, want error")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("GITHUB_OWNER", "someone")
	t.Setenv("GITHUB_REPO", "reading")
	t.Setenv("GITHUB_BLOG_REPO", "")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("DATA_DIR", "/tmp/booksite")

	cfg := FromEnv()
	if cfg.Port != "3000" {
		t.Errorf("Port = %s, want 3000", cfg.Port)
	}
	if cfg.GitHub.Owner != "someone" || cfg.GitHub.Repo != "reading" {
		t.Errorf("GitHub = %+v", cfg.GitHub)
	}
	if cfg.GitHub.BlogRepo != "reading" {
		t.Errorf("BlogRepo = %s, want fallback to content repo", cfg.GitHub.BlogRepo)
	}
	if cfg.AdminPassword != "hunter2" {
		t.Errorf("AdminPassword = %s", cfg.AdminPassword)
	}
	if cfg.Index.DataDir != "/tmp/booksite" {
		t.Errorf("DataDir = %s", cfg.Index.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
