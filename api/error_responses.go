package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrorCodeChapterNotFound ErrorCode = "CHAPTER_NOT_FOUND"
	ErrorCodePostNotFound    ErrorCode = "POST_NOT_FOUND"
	ErrorCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrorCodeUnauthorized    ErrorCode = "UNAUTHORIZED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeContentUnavailable ErrorCode = "CONTENT_UNAVAILABLE"
	ErrorCodeNotConfigured      ErrorCode = "NOT_CONFIGURED"
)

// APIError represents a standardized API error response
type APIError struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string) {
	c.JSON(statusCode, &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	})
}
