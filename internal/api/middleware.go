package api

import (
	"alcyxob/exercise-tracker/internal/observability"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Constants for context keys and headers
const (
	ContextRequestIDKey = "requestID"
	HeaderRequestID     = "X-Request-ID"
)

// maxRequestIDLength bounds client-supplied request ids.
const maxRequestIDLength = 128

// RequestIDMiddleware reuses a sane incoming X-Request-ID or generates a new one,
// stores it in the context and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observability.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Helper function to get the request id from context (used by handlers)
func getRequestIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextRequestIDKey)
	if !exists {
		return "", errors.New("request ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid request ID type in context")
	}
	return idStr, nil
}

// notFoundHandler answers unknown routes with the API's JSON error shape.
func notFoundHandler(c *gin.Context) {
	abortWithError(c, http.StatusNotFound, "Not Found")
}
