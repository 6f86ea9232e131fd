package stats

import (
	"goobert/stats-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The Log* recorders are fire-and-forget: failures are logged and dropped.
// Recorders that reference a file create its file_stats row on first use.

func (s *Store) eventFileID(kind, path string) (int64, bool) {
	if !s.Enabled() || path == "" {
		return 0, false
	}

	id, err := s.FileID(path, 0, false)
	if err != nil {
		zap.L().Error("Failed to resolve file for event", zap.String("kind", kind), zap.String("path", path), zap.Error(err))
		return 0, false
	}

	return id, true
}

func (s *Store) insertEvent(kind string, ev any) {
	if err := s.db.Create(ev).Error; err != nil {
		zap.L().Error("Failed to insert event", zap.String("kind", kind), zap.Error(err))
	}
}

// LogSkip records a jump away from the current position. skipType is one of
// next, prev, seek_fwd, seek_back or shuffle.
func (s *Store) LogSkip(path string, fromSec, toSec float64, skipType string) {
	id, ok := s.eventFileID("skip", path)
	if !ok {
		return
	}

	s.insertEvent("skip", &model.SkipEvent{
		FileID:         id,
		Timestamp:      s.nowMs(),
		FromPositionMs: secToMs(fromSec),
		ToPositionMs:   secToMs(toSec),
		SkipType:       skipType,
	})
}

// LogLoopToggle records a loop toggle and bumps the file's toggle counter.
func (s *Store) LogLoopToggle(path string, enabled bool, loopCount int) {
	id, ok := s.eventFileID("loop", path)
	if !ok {
		return
	}

	s.insertEvent("loop", &model.LoopEvent{
		FileID:      id,
		Timestamp:   s.nowMs(),
		LoopEnabled: enabled,
		LoopCount:   loopCount,
	})

	err := s.db.
		Model(&model.FileStats{}).
		Where("id = ?", id).
		UpdateColumn("loop_toggle_count", gorm.Expr("loop_toggle_count + 1")).
		Error
	if err != nil {
		zap.L().Error("Failed to bump loop toggle count", zap.Int64("file_id", id), zap.Error(err))
	}
}

// LogPause records a pause or resume. A resume carries the time since the
// file's latest pause event when that event was a pause.
func (s *Store) LogPause(path string, positionSec float64, isPause bool) {
	id, ok := s.eventFileID("pause", path)
	if !ok {
		return
	}

	now := s.nowMs()
	ev := &model.PauseEvent{
		FileID:     id,
		Timestamp:  now,
		PositionMs: secToMs(positionSec),
		IsPause:    isPause,
	}

	if !isPause {
		var last model.PauseEvent

		err := s.db.
			Where("file_id = ?", id).
			Order("timestamp desc, id desc").
			Limit(1).
			Find(&last).
			Error
		if err != nil {
			zap.L().Warn("Failed to look up previous pause", zap.Int64("file_id", id), zap.Error(err))
		} else if last.ID != 0 && last.IsPause && now >= last.Timestamp {
			ev.PauseDurationMs = now - last.Timestamp
		}
	}

	s.insertEvent("pause", ev)
}

func (s *Store) LogVolume(oldVolume, newVolume int, isMute bool) {
	if !s.Enabled() {
		return
	}

	s.insertEvent("volume", &model.VolumeEvent{
		Timestamp: s.nowMs(),
		OldVolume: oldVolume,
		NewVolume: newVolume,
		IsMute:    isMute,
	})
}

func (s *Store) LogZoom(path string, zoomLevel, panX, panY float64) {
	id, ok := s.eventFileID("zoom", path)
	if !ok {
		return
	}

	s.insertEvent("zoom", &model.ZoomEvent{
		FileID:    id,
		Timestamp: s.nowMs(),
		ZoomLevel: zoomLevel,
		PanX:      panX,
		PanY:      panY,
	})
}

func (s *Store) LogScreenshot(path string, positionSec float64, screenshotPath string) {
	id, ok := s.eventFileID("screenshot", path)
	if !ok {
		return
	}

	s.insertEvent("screenshot", &model.ScreenshotEvent{
		FileID:         id,
		Timestamp:      s.nowMs(),
		PositionMs:     secToMs(positionSec),
		ScreenshotPath: screenshotPath,
	})
}

// LogFullscreen records entering or leaving fullscreen. Row and col are -1
// unless a single tile went fullscreen.
func (s *Store) LogFullscreen(isFullscreen, isTile bool, row, col int) {
	if !s.Enabled() {
		return
	}

	s.insertEvent("fullscreen", &model.FullscreenEvent{
		Timestamp:        s.nowMs(),
		IsFullscreen:     isFullscreen,
		IsTileFullscreen: isTile,
		CellRow:          row,
		CellCol:          col,
	})
}

func (s *Store) LogGrid(rows, cols int, sourcePath, filter string, isStart bool) {
	if !s.Enabled() {
		return
	}

	s.insertEvent("grid", &model.GridEvent{
		Timestamp:  s.nowMs(),
		Rows:       rows,
		Cols:       cols,
		SourcePath: sourcePath,
		Filter:     filter,
		IsStart:    isStart,
	})
}

func (s *Store) LogRotation(path string, rotation int) {
	id, ok := s.eventFileID("rotation", path)
	if !ok {
		return
	}

	s.insertEvent("rotation", &model.RotationEvent{
		FileID:    id,
		Timestamp: s.nowMs(),
		Rotation:  rotation,
	})
}

// LogRename appends to the rename history and moves the file_stats row to
// the new path, keeping its id and counters. Active sessions keep whatever
// path they were started with.
func (s *Store) LogRename(oldPath, newPath string) {
	if !s.Enabled() {
		return
	}

	now := s.nowMs()

	s.insertEvent("rename", &model.RenameEvent{
		OldPath:   oldPath,
		NewPath:   newPath,
		Timestamp: now,
	})

	err := s.db.
		Model(&model.FileStats{}).
		Where("file_path = ?", oldPath).
		UpdateColumns(map[string]any{
			"file_path":  newPath,
			"updated_at": now,
		}).
		Error
	if err != nil {
		zap.L().Error("Failed to move file stats to new path", zap.String("old_path", oldPath), zap.String("new_path", newPath), zap.Error(err))
	}
}
