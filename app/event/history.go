package event

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// Feed returns the merged skip/loop/fullscreen activity feed. ?type narrows
// it to one of them.
func Feed(c *gin.Context, d *internal.Deps) {
	kind := c.DefaultQuery("type", "all")
	switch kind {
	case "all", "skip", "loop", "fullscreen":
	default:
		internal.BadRequest(c, "Invalid type provided")
		return
	}

	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	var feed []stats.FeedEvent
	if !d.Run(c, func(s *stats.Service) { feed = s.Analytics.RecentEvents(kind, limit) }) {
		return
	}

	c.JSON(http.StatusOK, feed)
}

// History returns the newest events of one kind. ?path narrows file events
// to a single file.
func History(c *gin.Context, d *internal.Deps) {
	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	path := c.Query("path")

	var query func(a *stats.Analytics) any

	switch c.Param("kind") {
	case "skip":
		query = func(a *stats.Analytics) any { return a.SkipEvents(path, limit) }
	case "loop":
		query = func(a *stats.Analytics) any { return a.LoopEvents(path, limit) }
	case "pause":
		query = func(a *stats.Analytics) any { return a.PauseEvents(path, limit) }
	case "zoom":
		query = func(a *stats.Analytics) any { return a.ZoomEvents(path, limit) }
	case "rotation":
		query = func(a *stats.Analytics) any { return a.RotationEvents(path, limit) }
	case "screenshot":
		query = func(a *stats.Analytics) any { return a.ScreenshotHistory(limit) }
	case "volume":
		query = func(a *stats.Analytics) any { return a.VolumeHistory(limit) }
	case "fullscreen":
		query = func(a *stats.Analytics) any { return a.FullscreenHistory(limit) }
	case "grid":
		query = func(a *stats.Analytics) any { return a.GridHistory(limit) }
	case "rename":
		query = func(a *stats.Analytics) any { return a.RenameHistory(limit) }
	default:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Unknown event kind",
			"requestID": c.GetString("requestID"),
		})
		return
	}

	var out any
	if !d.Run(c, func(s *stats.Service) { out = query(s.Analytics) }) {
		return
	}

	c.JSON(http.StatusOK, out)
}
