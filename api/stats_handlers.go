package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GuestbookHandler returns one page of guestbook comments.
func (api *API) GuestbookHandler(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	c.JSON(http.StatusOK, api.guestbook.Page(c.Request.Context(), page))
}

// ViewsHandler returns the visit counter of one path.
func (api *API) ViewsHandler(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusOK, gin.H{"count": "0"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": api.views.Counter(c.Request.Context(), path)})
}

// viewsBatchRequest is the body of a batch counter lookup.
type viewsBatchRequest struct {
	Paths []string `json:"paths"`
}

// ViewsBatchHandler returns visit counters for several paths at once.
// Unknown or failed paths come back as "0".
func (api *API) ViewsBatchHandler(c *gin.Context) {
	var req viewsBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Paths) == 0 {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, api.views.CounterBatch(c.Request.Context(), req.Paths))
}

// DashboardHandler returns the public dashboard aggregate.
func (api *API) DashboardHandler(c *gin.Context) {
	c.Header("Cache-Control", "s-maxage=60, stale-while-revalidate=30")
	c.JSON(http.StatusOK, api.dashboard.Dashboard(c.Request.Context()))
}
