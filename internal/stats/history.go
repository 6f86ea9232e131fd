package stats

import (
	"cmp"
	"fmt"
	"slices"

	"goobert/stats-api/internal/model"
)

// fileEvents loads the newest rows of an event table that references a file,
// joined to the file path. An empty path returns events for every file.
func fileEvents[T any](a *Analytics, table, path string, limit int) []T {
	out := []T{}
	if !a.store.Enabled() {
		return out
	}

	q := a.db().
		Table(table+" e").
		Select("e.*, COALESCE(fs.file_path, '') AS file_path").
		Joins("LEFT JOIN file_stats fs ON e.file_id = fs.id")
	if path != "" {
		q = q.Where("fs.file_path = ?", path)
	}

	err := q.
		Order("e.timestamp desc, e.id desc").
		Limit(limit).
		Scan(&out).
		Error
	if err != nil {
		queryFailed(table, err)
		return []T{}
	}

	return out
}

// plainEvents loads the newest rows of an event table without a file.
func plainEvents[T any](a *Analytics, limit int) []T {
	out := []T{}
	if !a.store.Enabled() {
		return out
	}

	err := a.db().
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&out).
		Error
	if err != nil {
		queryFailed(fmt.Sprintf("%T", out), err)
		return []T{}
	}

	return out
}

func (a *Analytics) SkipEvents(path string, limit int) []SkipEventInfo {
	return fileEvents[SkipEventInfo](a, "skip_events", path, limit)
}

func (a *Analytics) LoopEvents(path string, limit int) []LoopEventInfo {
	return fileEvents[LoopEventInfo](a, "loop_events", path, limit)
}

func (a *Analytics) PauseEvents(path string, limit int) []PauseEventInfo {
	return fileEvents[PauseEventInfo](a, "pause_events", path, limit)
}

func (a *Analytics) ZoomEvents(path string, limit int) []ZoomEventInfo {
	return fileEvents[ZoomEventInfo](a, "zoom_events", path, limit)
}

func (a *Analytics) ScreenshotHistory(limit int) []ScreenshotEventInfo {
	return fileEvents[ScreenshotEventInfo](a, "screenshot_events", "", limit)
}

func (a *Analytics) RotationEvents(path string, limit int) []RotationEventInfo {
	return fileEvents[RotationEventInfo](a, "rotation_events", path, limit)
}

func (a *Analytics) RenameHistory(limit int) []model.RenameEvent {
	return plainEvents[model.RenameEvent](a, limit)
}

func (a *Analytics) VolumeHistory(limit int) []model.VolumeEvent {
	return plainEvents[model.VolumeEvent](a, limit)
}

func (a *Analytics) FullscreenHistory(limit int) []model.FullscreenEvent {
	return plainEvents[model.FullscreenEvent](a, limit)
}

func (a *Analytics) GridHistory(limit int) []model.GridEvent {
	return plainEvents[model.GridEvent](a, limit)
}

// RecentEvents merges skips, loop toggles and fullscreen changes into one
// feed, newest first. kind is "all", "skip", "loop" or "fullscreen".
func (a *Analytics) RecentEvents(kind string, limit int) []FeedEvent {
	out := []FeedEvent{}

	if kind == "all" || kind == "skip" {
		for _, e := range a.SkipEvents("", limit) {
			out = append(out, FeedEvent{Kind: "skip", FilePath: e.FilePath, Timestamp: e.Timestamp, Detail: e.SkipType})
		}
	}

	if kind == "all" || kind == "loop" {
		for _, e := range a.LoopEvents("", limit) {
			detail := "disabled"
			if e.LoopEnabled {
				detail = "enabled"
			}

			out = append(out, FeedEvent{Kind: "loop", FilePath: e.FilePath, Timestamp: e.Timestamp, Detail: detail})
		}
	}

	if kind == "all" || kind == "fullscreen" {
		for _, e := range a.FullscreenHistory(limit) {
			detail := "exit"
			if e.IsFullscreen {
				detail = "enter"
			}
			if e.IsTileFullscreen {
				detail += fmt.Sprintf(" tile [%d,%d]", e.CellRow, e.CellCol)
			}

			out = append(out, FeedEvent{Kind: "fullscreen", Timestamp: e.Timestamp, Detail: detail})
		}
	}

	slices.SortStableFunc(out, func(x, y FeedEvent) int {
		return cmp.Compare(y.Timestamp, x.Timestamp)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
