package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestSizeLimitMiddleware limits the size of request bodies to prevent memory exhaustion
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	})
}

// CORSMiddleware adds CORS headers for cross-origin requests
func CORSMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

// AdminAuthMiddleware gates a route group behind the admin password sent
// as a bearer token.
func AdminAuthMiddleware(password string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		supplied := strings.TrimPrefix(auth, "Bearer ")
		if password == "" || auth == "" || supplied != password {
			SendError(c, http.StatusForbidden, ErrorCodeForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	})
}
