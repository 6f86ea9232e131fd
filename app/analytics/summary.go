// Package analytics contains the read-only dashboard endpoints
package analytics

import (
	"net/http"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/model"
	"goobert/stats-api/internal/stats"
	"goobert/stats-api/pkg/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

type summaryText struct {
	AccumulatedWatch string `json:"accumulated_watch"`
	RealElapsed      string `json:"real_elapsed"`
	TodayReal        string `json:"today_real"`
	TodayWatch       string `json:"today_watch"`
	LongestSession   string `json:"longest_session"`
	TotalPause       string `json:"total_pause"`
}

type summaryResponse struct {
	stats.Summary
	Formatted summaryText `json:"formatted"`
}

func Summary(c *gin.Context, d *internal.Deps) {
	var sum stats.Summary

	if !d.Run(c, func(s *stats.Service) { sum = s.Analytics.Summary(s.Clock.Now()) }) {
		return
	}

	c.JSON(http.StatusOK, summaryResponse{
		Summary: sum,
		Formatted: summaryText{
			AccumulatedWatch: util.FormatDuration(sum.AccumulatedWatchMs),
			RealElapsed:      util.FormatDuration(sum.RealElapsedMs),
			TodayReal:        util.FormatDuration(sum.TodayRealMs),
			TodayWatch:       util.FormatDuration(sum.TodayWatchMs),
			LongestSession:   util.FormatDuration(sum.LongestSessionMs),
			TotalPause:       util.FormatDuration(sum.TotalPauseMs),
		},
	})
}

func Hourly(c *gin.Context, d *internal.Deps) {
	var hours []stats.HourlyStats

	if !d.Run(c, func(s *stats.Service) { hours = s.Analytics.HourlyDistribution() }) {
		return
	}

	c.JSON(http.StatusOK, hours)
}

func Daily(c *gin.Context, d *internal.Deps) {
	var days []stats.DailyStats

	if !d.Run(c, func(s *stats.Service) { days = s.Analytics.DailyDistribution() }) {
		return
	}

	c.JSON(http.StatusOK, days)
}

type timelineDay struct {
	stats.TimelineDay
	RealMs int64 `json:"real_ms"`
}

// Timeline returns per-day totals for the last ?days days (default 30).
func Timeline(c *gin.Context, d *internal.Deps) {
	days, ok := internal.QueryInt(c, "days", 30, 1, 365)
	if !ok {
		return
	}

	var timeline []stats.TimelineDay
	if !d.Run(c, func(s *stats.Service) { timeline = s.Analytics.Timeline(days, s.Clock.Now()) }) {
		return
	}

	out := make([]timelineDay, len(timeline))
	for i, day := range timeline {
		out[i] = timelineDay{TimelineDay: day, RealMs: day.RealMs()}
	}

	c.JSON(http.StatusOK, out)
}

func TopFiles(c *gin.Context, d *internal.Deps) {
	fileList(c, d, (*stats.Analytics).MostWatched)
}

func RecentFiles(c *gin.Context, d *internal.Deps) {
	fileList(c, d, (*stats.Analytics).RecentlyWatched)
}

func fileList(c *gin.Context, d *internal.Deps, query func(*stats.Analytics, int) []model.FileStats) {
	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	var files []model.FileStats
	if !d.Run(c, func(s *stats.Service) { files = query(s.Analytics, limit) }) {
		return
	}

	c.JSON(http.StatusOK, files)
}

func RecentSessions(c *gin.Context, d *internal.Deps) {
	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	var sessions []stats.SessionInfo
	if !d.Run(c, func(s *stats.Service) { sessions = s.Analytics.RecentSessions(limit) }) {
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func Directories(c *gin.Context, d *internal.Deps) {
	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	var dirs []stats.DirectoryStats
	if !d.Run(c, func(s *stats.Service) { dirs = s.Analytics.DirectoryStats(limit) }) {
		return
	}

	c.JSON(http.StatusOK, dirs)
}

func Completion(c *gin.Context, d *internal.Deps) {
	limit, ok := internal.QueryInt(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}

	var (
		files []stats.CompletionStats
		avg   float64
	)

	if !d.Run(c, func(s *stats.Service) {
		files = s.Analytics.CompletionStats(limit)
		avg = s.Analytics.AverageCompletionRate()
	}) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"average_completion_rate": avg,
		"files":                   files,
	})
}
