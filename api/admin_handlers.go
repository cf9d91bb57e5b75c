package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminLoginRequest is the body of a login attempt.
type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginHandler checks the admin password. An unconfigured password
// is a server error, not an open door.
func (api *API) AdminLoginHandler(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body")
		return
	}

	if api.cfg.AdminPassword == "" {
		SendError(c, http.StatusInternalServerError, ErrorCodeNotConfigured, "ADMIN_PASSWORD not configured")
		return
	}
	if req.Password != api.cfg.AdminPassword {
		SendError(c, http.StatusUnauthorized, ErrorCodeUnauthorized, "Invalid password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminStatsHandler returns the admin dashboard aggregate. The route is
// gated by AdminAuthMiddleware.
func (api *API) AdminStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.dashboard.AdminStats(c.Request.Context()))
}
