// Package export contains the CSV download, snapshot and wipe endpoints
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileStatsCSV(c *gin.Context, d *internal.Deps) {
	serveCSV(c, d, "files.csv", (*stats.Exporter).WriteFileStats)
}

func SessionsCSV(c *gin.Context, d *internal.Deps) {
	serveCSV(c, d, "sessions.csv", (*stats.Exporter).WriteSessions)
}

// serveCSV renders into memory on the loop so the client's read speed
// never holds the loop up.
func serveCSV(c *gin.Context, d *internal.Deps, name string, write func(*stats.Exporter, io.Writer) error) {
	requestID := c.GetString("requestID")

	var (
		buf bytes.Buffer
		err error
	)

	if !d.Run(c, func(s *stats.Service) { err = write(s.Exporter, &buf) }) {
		return
	}

	if err != nil {
		if errors.Is(err, stats.ErrDisabled) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Stats database is unavailable",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to export stats", zap.String("export", name), zap.Error(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
