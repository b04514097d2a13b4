// Package handlers implements the REST endpoints of the API server.  Each
// handler depends on narrow service interfaces so tests can substitute
// in-memory fakes.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error onto its HTTP status.  Internal
// errors are masked; the structured log middleware carries the detail.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	message := err.Error()
	if status >= 500 {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(code), Message: message})
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage.
func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// queryFloat parses a float query parameter with a fallback.
func queryFloat(c *gin.Context, key string, fallback float64) float64 {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}
