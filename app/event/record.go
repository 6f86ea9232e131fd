// Package event contains the endpoints used to log and read player events
package event

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

type skipBody struct {
	FilePath string  `json:"file_path" binding:"required"`
	FromSec  float64 `json:"from_sec"`
	ToSec    float64 `json:"to_sec"`
	SkipType string  `json:"skip_type" binding:"required,oneof=next prev seek_fwd seek_back shuffle"`
}

type loopBody struct {
	FilePath  string `json:"file_path" binding:"required"`
	Enabled   bool   `json:"enabled"`
	LoopCount int    `json:"loop_count" binding:"min=0"`
}

type pauseBody struct {
	FilePath    string  `json:"file_path" binding:"required"`
	PositionSec float64 `json:"position_sec"`
	IsPause     bool    `json:"is_pause"`
}

type volumeBody struct {
	OldVolume int  `json:"old_volume" binding:"min=0,max=130"`
	NewVolume int  `json:"new_volume" binding:"min=0,max=130"`
	IsMute    bool `json:"is_mute"`
}

type zoomBody struct {
	FilePath  string  `json:"file_path" binding:"required"`
	ZoomLevel float64 `json:"zoom_level" binding:"gt=0"`
	PanX      float64 `json:"pan_x"`
	PanY      float64 `json:"pan_y"`
}

type screenshotBody struct {
	FilePath       string  `json:"file_path" binding:"required"`
	PositionSec    float64 `json:"position_sec"`
	ScreenshotPath string  `json:"screenshot_path"`
}

type fullscreenBody struct {
	IsFullscreen bool `json:"is_fullscreen"`
	IsTile       bool `json:"is_tile"`
	Row          *int `json:"row"`
	Col          *int `json:"col"`
}

type gridBody struct {
	Rows       int    `json:"rows" binding:"min=1"`
	Cols       int    `json:"cols" binding:"min=1"`
	SourcePath string `json:"source_path"`
	Filter     string `json:"filter"`
	IsStart    bool   `json:"is_start"`
}

type rotationBody struct {
	FilePath string `json:"file_path" binding:"required"`
	Rotation int    `json:"rotation" binding:"oneof=0 90 180 270"`
}

type renameBody struct {
	OldPath string `json:"old_path" binding:"required"`
	NewPath string `json:"new_path" binding:"required,nefield=OldPath"`
}

// Record logs one event. The body shape depends on the :kind path param.
func Record(c *gin.Context, d *internal.Deps) {
	var fn func(s *stats.Service)

	switch c.Param("kind") {
	case "skip":
		var b skipBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogSkip(b.FilePath, b.FromSec, b.ToSec, b.SkipType) }
		}
	case "loop":
		var b loopBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogLoopToggle(b.FilePath, b.Enabled, b.LoopCount) }
		}
	case "pause":
		var b pauseBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogPause(b.FilePath, b.PositionSec, b.IsPause) }
		}
	case "volume":
		var b volumeBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogVolume(b.OldVolume, b.NewVolume, b.IsMute) }
		}
	case "zoom":
		var b zoomBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogZoom(b.FilePath, b.ZoomLevel, b.PanX, b.PanY) }
		}
	case "screenshot":
		var b screenshotBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogScreenshot(b.FilePath, b.PositionSec, b.ScreenshotPath) }
		}
	case "fullscreen":
		var b fullscreenBody
		if bind(c, &b) {
			row, col := -1, -1
			if b.IsTile && b.Row != nil && b.Col != nil {
				row, col = *b.Row, *b.Col
			}

			fn = func(s *stats.Service) { s.LogFullscreen(b.IsFullscreen, b.IsTile, row, col) }
		}
	case "grid":
		var b gridBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogGrid(b.Rows, b.Cols, b.SourcePath, b.Filter, b.IsStart) }
		}
	case "rotation":
		var b rotationBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogRotation(b.FilePath, b.Rotation) }
		}
	case "rename":
		var b renameBody
		if bind(c, &b) {
			fn = func(s *stats.Service) { s.LogRename(b.OldPath, b.NewPath) }
		}
	default:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Unknown event kind",
			"requestID": c.GetString("requestID"),
		})
		return
	}

	if fn == nil || !d.Run(c, fn) {
		return
	}

	c.Status(http.StatusNoContent)
}

func bind(c *gin.Context, b any) bool {
	if err := c.ShouldBindJSON(b); err != nil {
		internal.BadRequest(c, "Invalid request body")
		return false
	}

	return true
}
