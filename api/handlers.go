package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chanani/booksite/config"
	"github.com/chanani/booksite/internal/analytics"
	"github.com/chanani/booksite/internal/guestbook"
	"github.com/chanani/booksite/internal/search"
	"github.com/chanani/booksite/services"
)

const maxRequestBody = 1 << 20 // 1 MiB

// API holds dependencies for the HTTP handlers.
type API struct {
	cfg         config.Config
	content     services.ContentClient
	posts       services.PostClient
	discussions services.DiscussionClient
	builder     services.IndexBuilder
	searcher    *search.Service
	guestbook   *guestbook.Service
	dashboard   *analytics.Service
	views       services.ViewCounter
}

// Deps bundles the service dependencies of the API.
type Deps struct {
	Content     services.ContentClient
	Posts       services.PostClient
	Discussions services.DiscussionClient
	Builder     services.IndexBuilder
	Searcher    *search.Service
	Guestbook   *guestbook.Service
	Dashboard   *analytics.Service
	Views       services.ViewCounter
}

// NewAPI creates the API handler structure.
func NewAPI(cfg config.Config, deps Deps) *API {
	return &API{
		cfg:         cfg,
		content:     deps.Content,
		posts:       deps.Posts,
		discussions: deps.Discussions,
		builder:     deps.Builder,
		searcher:    deps.Searcher,
		guestbook:   deps.Guestbook,
		dashboard:   deps.Dashboard,
		views:       deps.Views,
	}
}

// SetupRoutes defines all routes of the booksite server.
func SetupRoutes(router *gin.Engine, cfg config.Config, deps Deps) {
	apiHandler := NewAPI(cfg, deps)

	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(maxRequestBody))

	router.GET("/health", apiHandler.HealthCheckHandler)

	apiRoutes := router.Group("/api")
	{
		bookRoutes := apiRoutes.Group("/books")
		{
			bookRoutes.GET("", apiHandler.ListBooksHandler)
			bookRoutes.GET("/:slug", apiHandler.GetBookHandler)
			bookRoutes.GET("/:slug/chapters/*chapterPath", apiHandler.GetChapterHandler)
		}

		postRoutes := apiRoutes.Group("/posts")
		{
			postRoutes.GET("", apiHandler.ListPostsHandler)
			postRoutes.GET("/:category/:slug", apiHandler.GetPostHandler)
		}

		searchRoutes := apiRoutes.Group("/search")
		{
			searchRoutes.GET("", apiHandler.SearchHandler)
			searchRoutes.GET("/status", apiHandler.SearchStatusHandler)
			searchRoutes.POST("/rebuild", apiHandler.RebuildIndexHandler)
		}

		apiRoutes.GET("/guestbook", apiHandler.GuestbookHandler)
		apiRoutes.GET("/views", apiHandler.ViewsHandler)
		apiRoutes.POST("/views-batch", apiHandler.ViewsBatchHandler)
		apiRoutes.GET("/dashboard", apiHandler.DashboardHandler)

		adminRoutes := apiRoutes.Group("/admin")
		{
			adminRoutes.POST("/login", apiHandler.AdminLoginHandler)

			statsRoutes := adminRoutes.Group("/stats")
			statsRoutes.Use(AdminAuthMiddleware(cfg.AdminPassword))
			{
				statsRoutes.GET("", apiHandler.AdminStatsHandler)
				statsRoutes.POST("", apiHandler.AdminStatsHandler)
			}
		}
	}
}

// HealthCheckHandler reports liveness plus the index lifecycle state.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"index_state": api.builder.State(),
	})
}
