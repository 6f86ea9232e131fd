package model

// Event tables are append-only. Positions are stored in milliseconds.

type SkipEvent struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID         int64  `gorm:"not null;index:idx_skip_events_file" json:"file_id"`
	Timestamp      int64  `gorm:"not null;index:idx_skip_events_timestamp,sort:desc" json:"timestamp"`
	FromPositionMs int64  `json:"from_position_ms"`
	ToPositionMs   int64  `json:"to_position_ms"`
	SkipType       string `gorm:"not null" json:"skip_type"` // next, prev, seek_fwd, seek_back, shuffle
}

func (SkipEvent) TableName() string { return "skip_events" }

type LoopEvent struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID      int64 `gorm:"not null;index:idx_loop_events_file" json:"file_id"`
	Timestamp   int64 `gorm:"not null;index:idx_loop_events_timestamp,sort:desc" json:"timestamp"`
	LoopEnabled bool  `gorm:"not null" json:"loop_enabled"`
	LoopCount   int   `gorm:"default:0" json:"loop_count"` // loops completed before the toggle
}

func (LoopEvent) TableName() string { return "loop_events" }

type PauseEvent struct {
	ID              int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID          int64 `gorm:"index:idx_pause_events_file" json:"file_id"`
	Timestamp       int64 `gorm:"not null;index:idx_pause_events_timestamp,sort:desc" json:"timestamp"`
	PositionMs      int64 `json:"position_ms"`
	PauseDurationMs int64 `gorm:"default:0" json:"pause_duration_ms"`
	IsPause         bool  `gorm:"not null" json:"is_pause"` // false = resume
}

func (PauseEvent) TableName() string { return "pause_events" }

type VolumeEvent struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp int64 `gorm:"not null;index:idx_volume_events_timestamp,sort:desc" json:"timestamp"`
	OldVolume int   `json:"old_volume"`
	NewVolume int   `json:"new_volume"`
	IsMute    bool  `gorm:"default:false" json:"is_mute"`
}

func (VolumeEvent) TableName() string { return "volume_events" }

type ZoomEvent struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    int64   `gorm:"index:idx_zoom_events_file" json:"file_id"`
	Timestamp int64   `gorm:"not null;index:idx_zoom_events_timestamp,sort:desc" json:"timestamp"`
	ZoomLevel float64 `json:"zoom_level"`
	PanX      float64 `gorm:"default:0" json:"pan_x"`
	PanY      float64 `gorm:"default:0" json:"pan_y"`
}

func (ZoomEvent) TableName() string { return "zoom_events" }

type ScreenshotEvent struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID         int64  `gorm:"index:idx_screenshot_events_file" json:"file_id"`
	Timestamp      int64  `gorm:"not null;index:idx_screenshot_events_timestamp,sort:desc" json:"timestamp"`
	PositionMs     int64  `json:"position_ms"`
	ScreenshotPath string `json:"screenshot_path"`
}

func (ScreenshotEvent) TableName() string { return "screenshot_events" }

type FullscreenEvent struct {
	ID               int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp        int64 `gorm:"not null;index:idx_fullscreen_events_timestamp,sort:desc" json:"timestamp"`
	IsFullscreen     bool  `gorm:"not null" json:"is_fullscreen"`
	IsTileFullscreen bool  `gorm:"default:false" json:"is_tile_fullscreen"`
	CellRow          int   `json:"cell_row"`
	CellCol          int   `json:"cell_col"`
}

func (FullscreenEvent) TableName() string { return "fullscreen_events" }

type GridEvent struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp  int64  `gorm:"not null;index:idx_grid_events_timestamp,sort:desc" json:"timestamp"`
	Rows       int    `gorm:"not null" json:"rows"`
	Cols       int    `gorm:"not null" json:"cols"`
	SourcePath string `json:"source_path"`
	Filter     string `json:"filter"`
	IsStart    bool   `gorm:"not null" json:"is_start"` // false = stop
}

func (GridEvent) TableName() string { return "grid_events" }

type RotationEvent struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    int64 `gorm:"index:idx_rotation_events_file" json:"file_id"`
	Timestamp int64 `gorm:"not null;index:idx_rotation_events_timestamp,sort:desc" json:"timestamp"`
	Rotation  int   `gorm:"default:0" json:"rotation"`
}

func (RotationEvent) TableName() string { return "rotation_events" }

type RenameEvent struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OldPath   string `gorm:"not null" json:"old_path"`
	NewPath   string `gorm:"not null" json:"new_path"`
	Timestamp int64  `gorm:"not null;index:idx_rename_history_timestamp,sort:desc" json:"timestamp"`
}

func (RenameEvent) TableName() string { return "rename_history" }

// StatsTables lists every statistics table. file_stats goes last.
func StatsTables() []any {
	return []any{
		&WatchSession{},
		&SkipEvent{},
		&LoopEvent{},
		&PauseEvent{},
		&VolumeEvent{},
		&ZoomEvent{},
		&ScreenshotEvent{},
		&FullscreenEvent{},
		&GridEvent{},
		&RotationEvent{},
		&RenameEvent{},
		&FileStats{},
	}
}
