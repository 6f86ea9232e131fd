// Package session contains the endpoints the player uses to report what
// each grid cell is doing
package session

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

type cellBody struct {
	Row int `json:"row" binding:"min=0"`
	Col int `json:"col" binding:"min=0"`
}

func (b cellBody) key() stats.CellKey {
	return stats.CellKey{Row: b.Row, Col: b.Col}
}

type startBody struct {
	cellBody
	FilePath    string  `json:"file_path" binding:"required"`
	DurationSec float64 `json:"duration_sec" binding:"min=0"`
	IsImage     bool    `json:"is_image"`
}

func Start(c *gin.Context, d *internal.Deps) {
	var body startBody
	if err := c.ShouldBindJSON(&body); err != nil {
		internal.BadRequest(c, "Invalid request body")
		return
	}

	var (
		active ActiveResponse
		ok     bool
	)

	run := d.Run(c, func(s *stats.Service) {
		s.Tracker.Start(body.key(), body.FilePath, body.DurationSec, body.IsImage)
		active.Session, ok = s.Tracker.Session(body.key())
	})
	if !run {
		return
	}

	active.Tracking = ok
	c.JSON(http.StatusOK, active)
}

// ActiveResponse tells the caller whether a session is being tracked.
// Tracking is false when the stats database is unavailable.
type ActiveResponse struct {
	Tracking bool                `json:"tracking"`
	Session  stats.ActiveSession `json:"session"`
}
