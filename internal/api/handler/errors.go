package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
)

// statusFor maps an error kind to its HTTP status. Pipeline and store
// failures are all reported as 500.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg} with the status for err's kind.
func respondError(c *gin.Context, err error) {
	status := statusFor(domain.KindOf(err))
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		respondError(c, domain.InvalidInput("parse path", "%s must be a positive integer, got %q", name, raw))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into v, answering 400 on malformed input.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, domain.InvalidInput("decode request body", "%v", err))
		return false
	}
	return true
}
