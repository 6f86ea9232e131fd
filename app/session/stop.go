package session

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

func Stop(c *gin.Context, d *internal.Deps) {
	var body cellBody
	if err := c.ShouldBindJSON(&body); err != nil {
		internal.BadRequest(c, "Invalid request body")
		return
	}

	if !d.Run(c, func(s *stats.Service) { s.Tracker.Stop(body.key()) }) {
		return
	}

	c.Status(http.StatusNoContent)
}

func StopAll(c *gin.Context, d *internal.Deps) {
	if !d.Run(c, func(s *stats.Service) { s.Tracker.StopAll() }) {
		return
	}

	c.Status(http.StatusNoContent)
}
