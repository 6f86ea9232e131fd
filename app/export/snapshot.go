package export

import (
	"errors"
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/service"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Snapshot writes both CSV files into the export directory right away,
// uploading them when object storage is configured.
func Snapshot(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	snap, err := d.Exports.Run(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoopStopped), errors.Is(err, stats.ErrDisabled):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Stats database is unavailable",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to write export snapshot", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Clear flushes every active session and wipes all statistics.
func Clear(c *gin.Context, d *internal.Deps) {
	if !d.Run(c, func(s *stats.Service) { s.Exporter.ClearAll() }) {
		return
	}

	c.Status(http.StatusNoContent)
}
