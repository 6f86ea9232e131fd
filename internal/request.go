package internal

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"goobert/stats-api/internal/service"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Run executes fn on the stats loop for the current request. When it
// returns false the response has already been written.
func (d *Deps) Run(c *gin.Context, fn func(s *stats.Service)) bool {
	err := d.Loop.Do(c.Request.Context(), fn)
	if err == nil {
		return true
	}

	requestID := c.GetString("requestID")

	switch {
	case errors.Is(err, service.ErrLoopStopped):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Stats are shutting down",
			"requestID": requestID,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.Abort()
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to run on stats loop", zap.Error(err))
	}

	return false
}

// QueryInt reads an integer query parameter clamped to [lo, hi]. A
// missing value yields def; a malformed one writes a 400 and returns false.
func QueryInt(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		BadRequest(c, "Invalid "+key+" provided")
		return 0, false
	}

	return max(lo, min(n, hi)), true
}

// BadRequest aborts with a 400 carrying msg.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}
