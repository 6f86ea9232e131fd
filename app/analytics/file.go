package analytics

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/model"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

type fileResponse struct {
	Stats           model.FileStats     `json:"stats"`
	LastPositionSec float64             `json:"last_position_sec"`
	LoopCount       int                 `json:"loop_count"`
	Sessions        []stats.SessionInfo `json:"sessions"`
}

// File returns everything known about ?path.
func File(c *gin.Context, d *internal.Deps) {
	path := c.Query("path")
	if path == "" {
		internal.BadRequest(c, "No path provided")
		return
	}

	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	var out fileResponse

	if !d.Run(c, func(s *stats.Service) {
		out.Stats = s.Analytics.FileStats(path)
		if out.Stats.ID == 0 {
			return
		}

		out.LastPositionSec = s.Analytics.LastPosition(path)
		out.LoopCount = s.Analytics.LoopCountForFile(path)
		out.Sessions = s.Analytics.SessionsForFile(path, limit)
	}) {
		return
	}

	if out.Stats.ID == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": c.GetString("requestID"),
		})
		return
	}

	c.JSON(http.StatusOK, out)
}
