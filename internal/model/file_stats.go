// Package model defines database models
package model

// FileStats is the per-path aggregate row. All timestamps are unix
// millisecond timestamps, all durations are milliseconds.
type FileStats struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FilePath        string `gorm:"uniqueIndex:idx_file_stats_path;not null" json:"file_path"`
	TotalWatchMs    int64  `gorm:"default:0;index:idx_file_stats_total_watch,sort:desc" json:"total_watch_ms"`
	PlayCount       int    `gorm:"default:0" json:"play_count"`
	LastWatchedAt   int64  `gorm:"index:idx_file_stats_last_watched,sort:desc" json:"last_watched_at"`
	LastPositionMs  int64  `gorm:"default:0" json:"last_position_ms"`
	DurationMs      int64  `gorm:"default:0" json:"duration_ms"`
	IsImage         bool   `gorm:"default:false" json:"is_image"`
	LoopToggleCount int    `gorm:"default:0" json:"loop_toggle_count"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

func (FileStats) TableName() string { return "file_stats" }

// WatchSession is written once when a session is finalized and never
// updated afterwards.
type WatchSession struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID     int64 `gorm:"not null;index:idx_watch_sessions_file" json:"file_id"`
	StartedAt  int64 `gorm:"not null;index:idx_watch_sessions_started,sort:desc" json:"started_at"`
	EndedAt    int64 `json:"ended_at"`
	DurationMs int64 `gorm:"default:0" json:"duration_ms"`
	CellRow    int   `json:"cell_row"`
	CellCol    int   `json:"cell_col"`
	HourOfDay  int   `gorm:"index:idx_watch_sessions_hour" json:"hour_of_day"`
	DayOfWeek  int   `json:"day_of_week"` // 1-7, Monday first
}

func (WatchSession) TableName() string { return "watch_sessions" }
