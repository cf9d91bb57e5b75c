package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/chanani/booksite/api"
	"github.com/chanani/booksite/config"
	"github.com/chanani/booksite/internal/analytics"
	"github.com/chanani/booksite/internal/cache"
	"github.com/chanani/booksite/internal/github"
	"github.com/chanani/booksite/internal/guestbook"
	"github.com/chanani/booksite/internal/indexer"
	"github.com/chanani/booksite/internal/search"
	"github.com/chanani/booksite/store"
)

func main() {
	var (
		help    = flag.Bool("help", false, "Show help message")
		port    = flag.String("port", "", "Port to run the server on (overrides PORT)")
		dataDir = flag.String("data-dir", "", "Directory for the search index snapshot (overrides DATA_DIR)")
	)

	flag.Parse()

	if *help {
		fmt.Printf("booksite - reading/blog site backend\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nConfiguration comes from the environment; see config.FromEnv.\n")
		return
	}

	cfg := config.FromEnv()
	if *port != "" {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.Index.DataDir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Using data directory: %s", cfg.Index.DataDir)
	snapshots, err := cache.NewFileStore(cfg.Index.DataDir)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	content := github.NewClient(cfg.GitHub)
	chapters := store.NewChapterStore()
	builder := indexer.New(content, chapters, snapshots, cfg.Index)
	searcher := search.NewService(chapters, cfg.Index)
	gc := analytics.NewClient(cfg.GoatCounter)
	dashboard := analytics.NewService(gc, cfg.GitHub)

	router := gin.Default()
	api.SetupRoutes(router, cfg, api.Deps{
		Content:     content,
		Posts:       content,
		Discussions: content,
		Builder:     builder,
		Searcher:    searcher,
		Guestbook:   guestbook.NewService(content),
		Dashboard:   dashboard,
		Views:       gc,
	})

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
