package api

import (
	"context"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/chanani/booksite/model"
)

// SearchHandler answers a content search query. The first eligible query
// of a session triggers index hydration from the snapshot cache, or a
// background build when no usable snapshot exists. Queries answered while
// the build runs see the partial index; that is the accepted best-effort
// contract.
func (api *API) SearchHandler(c *gin.Context) {
	query := c.Query("q")

	if utf8.RuneCountInString(query) >= api.cfg.Index.MinQueryLen {
		api.ensureIndex()
	}

	resp := api.searcher.Query(query)
	c.JSON(http.StatusOK, gin.H{
		"results":  resp.Results,
		"total":    resp.Total,
		"took":     resp.Took,
		"query_id": resp.QueryID,
		"index": gin.H{
			"state":    api.builder.State(),
			"progress": api.builder.Progress(),
		},
	})
}

// SearchStatusHandler reports the index lifecycle state and progress.
func (api *API) SearchStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":    api.builder.State(),
		"progress": api.builder.Progress(),
	})
}

// RebuildIndexHandler drops the index and its snapshot and starts a fresh
// background build.
func (api *API) RebuildIndexHandler(c *gin.Context) {
	if api.builder.State() == model.BuildStateBuilding {
		c.JSON(http.StatusConflict, gin.H{"message": "A build is already running"})
		return
	}

	api.builder.Invalidate()
	api.startBuild()
	c.JSON(http.StatusAccepted, gin.H{"message": "Index rebuild started"})
}

// ensureIndex makes sure an index exists or is on its way: a non-expired
// snapshot is hydrated synchronously, otherwise a build starts in the
// background. Concurrent calls are safe; the builder's re-entry guard
// collapses them into one build.
func (api *API) ensureIndex() {
	if api.builder.State() != model.BuildStateEmpty {
		return
	}
	if api.builder.LoadCached() {
		return
	}
	api.startBuild()
}

// startBuild launches a build detached from any request context: a build
// keeps running and persists its snapshot even when the caller goes away.
func (api *API) startBuild() {
	go func() {
		ctx := context.Background()
		books, err := api.content.ListBooks(ctx)
		if err != nil {
			log.Printf("Warning: index build aborted, book listing failed: %v", err)
			return
		}
		api.builder.Build(ctx, books)
	}()
}
