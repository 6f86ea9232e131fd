package stats

import "goobert/stats-api/internal/model"

// SessionInfo is a watch session joined to its file path.
type SessionInfo struct {
	model.WatchSession
	FilePath string `json:"file_path"`
}

type HourlyStats struct {
	Hour         int   `json:"hour"` // 0-23
	TotalWatchMs int64 `json:"total_watch_ms"`
	SessionCount int   `json:"session_count"`
}

type DailyStats struct {
	DayOfWeek    int   `json:"day_of_week"` // 1-7, Monday first
	TotalWatchMs int64 `json:"total_watch_ms"`
	SessionCount int   `json:"session_count"`
}

// TimelineDay aggregates the sessions started on one local calendar day.
type TimelineDay struct {
	Date         string `json:"date"` // YYYY-MM-DD
	TotalWatchMs int64  `json:"total_watch_ms"`
	SessionCount int    `json:"session_count"`
	FirstStart   int64  `json:"first_start"`
	LastEnd      int64  `json:"last_end"`
}

// RealMs is the wall-clock span covered by the day's sessions.
func (d TimelineDay) RealMs() int64 {
	if d.FirstStart == 0 || d.LastEnd == 0 {
		return 0
	}

	return d.LastEnd - d.FirstStart
}

// CompletionStats classifies a file's plays by how far its last known
// position got. It's an approximation: only the latest position is known,
// so every play of the file lands in the same bucket.
type CompletionStats struct {
	FilePath                 string  `json:"file_path"`
	AverageCompletionPercent float64 `json:"average_completion_percent"`
	FullWatchCount           int     `json:"full_watch_count"`    // >= 90%
	PartialWatchCount        int     `json:"partial_watch_count"` // 10% - 90%
	SkipCount                int     `json:"skip_count"`          // < 10%
}

type DirectoryStats struct {
	DirectoryPath string `json:"directory_path"`
	TotalWatchMs  int64  `json:"total_watch_ms"`
	FileCount     int    `json:"file_count"`
	PlayCount     int    `json:"play_count"`
}

type TimeRangeStats struct {
	StartTime    int64 `json:"start_time"`
	EndTime      int64 `json:"end_time"`
	TotalWatchMs int64 `json:"total_watch_ms"`
	SessionCount int   `json:"session_count"`
	FileCount    int   `json:"file_count"`
	SkipCount    int   `json:"skip_count"`
	LoopCount    int   `json:"loop_count"` // loop-enabled toggles only
}

// Summary is the dashboard headline block.
type Summary struct {
	AccumulatedWatchMs int64   `json:"accumulated_watch_ms"`
	RealElapsedMs      int64   `json:"real_elapsed_ms"`
	TodayRealMs        int64   `json:"today_real_ms"`
	TodayWatchMs       int64   `json:"today_watch_ms"`
	TodaySessions      int     `json:"today_sessions"`
	ParallelismFactor  float64 `json:"parallelism_factor"`
	FilesTracked       int     `json:"files_tracked"`
	TotalSessions      int     `json:"total_sessions"`
	AvgSessionMs       float64 `json:"avg_session_ms"`
	LongestSessionMs   int64   `json:"longest_session_ms"`
	PeakHour           int     `json:"peak_hour"`
	PeakDayOfWeek      int     `json:"peak_day_of_week"`
	TotalSkips         int     `json:"total_skips"`
	TotalScreenshots   int     `json:"total_screenshots"`
	TotalPauseMs       int64   `json:"total_pause_ms"`
	AvgCompletionRate  float64 `json:"avg_completion_rate"`
	TopDirectory       string  `json:"top_directory"`
}

// Event views joined to the file path where the event references a file.

type SkipEventInfo struct {
	model.SkipEvent
	FilePath string `json:"file_path"`
}

type LoopEventInfo struct {
	model.LoopEvent
	FilePath string `json:"file_path"`
}

type PauseEventInfo struct {
	model.PauseEvent
	FilePath string `json:"file_path"`
}

type ZoomEventInfo struct {
	model.ZoomEvent
	FilePath string `json:"file_path"`
}

type ScreenshotEventInfo struct {
	model.ScreenshotEvent
	FilePath string `json:"file_path"`
}

type RotationEventInfo struct {
	model.RotationEvent
	FilePath string `json:"file_path"`
}

// FeedEvent is one line of the merged recent-activity feed.
type FeedEvent struct {
	Kind      string `json:"type"`
	FilePath  string `json:"file_path"`
	Timestamp int64  `json:"timestamp"`
	Detail    string `json:"detail"`
}
