package session

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

type positionBody struct {
	cellBody
	PositionSec float64 `json:"position_sec" binding:"min=0"`
}

type pauseBody struct {
	cellBody
	Paused *bool `json:"paused" binding:"required"`
}

func Position(c *gin.Context, d *internal.Deps) {
	var body positionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		internal.BadRequest(c, "Invalid request body")
		return
	}

	if !d.Run(c, func(s *stats.Service) { s.Tracker.UpdatePosition(body.key(), body.PositionSec) }) {
		return
	}

	c.Status(http.StatusNoContent)
}

func Pause(c *gin.Context, d *internal.Deps) {
	var body pauseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		internal.BadRequest(c, "Invalid request body")
		return
	}

	if !d.Run(c, func(s *stats.Service) { s.Tracker.SetPaused(body.key(), *body.Paused) }) {
		return
	}

	c.Status(http.StatusNoContent)
}

func Active(c *gin.Context, d *internal.Deps) {
	var active []stats.ActiveSession

	if !d.Run(c, func(s *stats.Service) { active = s.Tracker.Active() }) {
		return
	}

	c.JSON(http.StatusOK, active)
}
