package stats

import (
	"cmp"
	"database/sql"
	"slices"
	"strings"
	"time"

	"goobert/stats-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Analytics answers read-only questions about the stored data. Every query
// falls back to an empty or zero value when the store is disabled or the
// query fails.
type Analytics struct {
	store *Store
}

func NewAnalytics(store *Store) *Analytics {
	return &Analytics{store: store}
}

func (a *Analytics) db() *gorm.DB {
	return a.store.db
}

func queryFailed(name string, err error) {
	zap.L().Error("Stats query failed", zap.String("query", name), zap.Error(err))
}

// FileStats returns the row for path, or a zero value with ID 0.
func (a *Analytics) FileStats(path string) model.FileStats {
	var f model.FileStats
	if !a.store.Enabled() {
		return f
	}

	err := a.db().
		Where("file_path = ?", path).
		Limit(1).
		Find(&f).
		Error
	if err != nil {
		queryFailed("file_stats", err)
		return model.FileStats{}
	}

	return f
}

func (a *Analytics) MostWatched(limit int) []model.FileStats {
	return a.files("most_watched", "total_watch_ms > 0", "total_watch_ms desc, id", limit)
}

func (a *Analytics) RecentlyWatched(limit int) []model.FileStats {
	return a.files("recently_watched", "last_watched_at > 0", "last_watched_at desc, id", limit)
}

func (a *Analytics) files(name, where, order string, limit int) []model.FileStats {
	out := []model.FileStats{}
	if !a.store.Enabled() {
		return out
	}

	err := a.db().
		Where(where).
		Order(order).
		Limit(limit).
		Find(&out).
		Error
	if err != nil {
		queryFailed(name, err)
		return []model.FileStats{}
	}

	return out
}

func (a *Analytics) TotalWatchTime() int64 {
	return a.scalarInt("total_watch_time", func(db *gorm.DB) *gorm.DB {
		return db.Model(&model.FileStats{}).Select("COALESCE(SUM(total_watch_ms), 0)")
	})
}

func (a *Analytics) TotalFilesTracked() int {
	return int(a.count("files_tracked", &model.FileStats{}, "total_watch_ms > 0"))
}

// LastPosition is the resume point in seconds. Files that were watched past
// 95% of their duration start over from 0.
func (a *Analytics) LastPosition(path string) float64 {
	f := a.FileStats(path)
	if f.ID == 0 {
		return 0
	}

	if f.DurationMs > 0 && float64(f.LastPositionMs) > float64(f.DurationMs)*0.95 {
		return 0
	}

	return msToSec(f.LastPositionMs)
}

func (a *Analytics) LoopCountForFile(path string) int {
	return a.FileStats(path).LoopToggleCount
}

func (a *Analytics) SessionsForFile(path string, limit int) []SessionInfo {
	return a.sessions("sessions_for_file", func(db *gorm.DB) *gorm.DB {
		return db.Where("fs.file_path = ?", path)
	}, limit)
}

func (a *Analytics) RecentSessions(limit int) []SessionInfo {
	return a.sessions("recent_sessions", nil, limit)
}

func (a *Analytics) sessions(name string, filter func(*gorm.DB) *gorm.DB, limit int) []SessionInfo {
	out := []SessionInfo{}
	if !a.store.Enabled() {
		return out
	}

	q := a.db().
		Table("watch_sessions ws").
		Select("ws.*, fs.file_path").
		Joins("JOIN file_stats fs ON ws.file_id = fs.id")
	if filter != nil {
		q = filter(q)
	}

	err := q.
		Order("ws.started_at desc, ws.id desc").
		Limit(limit).
		Scan(&out).
		Error
	if err != nil {
		queryFailed(name, err)
		return []SessionInfo{}
	}

	return out
}

// WatchTimeForRange sums the sessions that started within [startMs, endMs].
func (a *Analytics) WatchTimeForRange(startMs, endMs int64) int64 {
	return a.scalarInt("watch_time_for_range", func(db *gorm.DB) *gorm.DB {
		return db.
			Model(&model.WatchSession{}).
			Select("COALESCE(SUM(duration_ms), 0)").
			Where("started_at >= ? AND started_at <= ?", startMs, endMs)
	})
}

type bucketRow struct {
	Bucket   int
	Total    int64
	Sessions int
}

func (a *Analytics) buckets(name, column string) []bucketRow {
	var rows []bucketRow
	if !a.store.Enabled() {
		return rows
	}

	err := a.db().
		Model(&model.WatchSession{}).
		Select(column + " AS bucket, COALESCE(SUM(duration_ms), 0) AS total, COUNT(*) AS sessions").
		Group(column).
		Scan(&rows).
		Error
	if err != nil {
		queryFailed(name, err)
		return nil
	}

	return rows
}

// HourlyDistribution always returns 24 buckets, hour 0 first.
func (a *Analytics) HourlyDistribution() []HourlyStats {
	out := make([]HourlyStats, 24)
	for h := range out {
		out[h].Hour = h
	}

	for _, r := range a.buckets("hourly_distribution", "hour_of_day") {
		if r.Bucket >= 0 && r.Bucket < 24 {
			out[r.Bucket].TotalWatchMs = r.Total
			out[r.Bucket].SessionCount = r.Sessions
		}
	}

	return out
}

// DailyDistribution always returns 7 buckets, Monday first.
func (a *Analytics) DailyDistribution() []DailyStats {
	out := make([]DailyStats, 7)
	for d := range out {
		out[d].DayOfWeek = d + 1
	}

	for _, r := range a.buckets("daily_distribution", "day_of_week") {
		if r.Bucket >= 1 && r.Bucket <= 7 {
			out[r.Bucket-1].TotalWatchMs = r.Total
			out[r.Bucket-1].SessionCount = r.Sessions
		}
	}

	return out
}

// PeakHour is the hour with the most watch time. Ties go to the earliest
// hour; with no data it's 0.
func (a *Analytics) PeakHour() int {
	hours := a.HourlyDistribution()

	best := 0
	for h, s := range hours {
		if s.TotalWatchMs > hours[best].TotalWatchMs {
			best = h
		}
	}

	return best
}

// PeakDayOfWeek is the day (1 = Monday) with the most watch time. Ties go
// to the earliest day; with no data it's Monday.
func (a *Analytics) PeakDayOfWeek() int {
	days := a.DailyDistribution()

	best := 0
	for d, s := range days {
		if s.TotalWatchMs > days[best].TotalWatchMs {
			best = d
		}
	}

	return best + 1
}

// Timeline groups sessions started in the last days days by local date,
// oldest first.
func (a *Analytics) Timeline(days int, now time.Time) []TimelineDay {
	out := []TimelineDay{}
	if !a.store.Enabled() || days <= 0 {
		return out
	}

	since := now.AddDate(0, 0, -days).UnixMilli()

	var sessions []model.WatchSession

	err := a.db().
		Select("started_at", "ended_at", "duration_ms").
		Where("started_at >= ?", since).
		Order("started_at").
		Find(&sessions).
		Error
	if err != nil {
		queryFailed("timeline", err)
		return out
	}

	byDate := map[string]int{}
	for _, s := range sessions {
		date := time.UnixMilli(s.StartedAt).In(now.Location()).Format(time.DateOnly)

		i, ok := byDate[date]
		if !ok {
			out = append(out, TimelineDay{Date: date, FirstStart: s.StartedAt})
			i = len(out) - 1
			byDate[date] = i
		}

		d := &out[i]
		d.TotalWatchMs += s.DurationMs
		d.SessionCount++
		d.FirstStart = min(d.FirstStart, s.StartedAt)
		d.LastEnd = max(d.LastEnd, s.EndedAt)
	}

	return out
}

// StatsForRange summarizes sessions started and events logged within
// [startMs, endMs].
func (a *Analytics) StatsForRange(startMs, endMs int64) TimeRangeStats {
	stats := TimeRangeStats{StartTime: startMs, EndTime: endMs}
	if !a.store.Enabled() {
		return stats
	}

	var row struct {
		Total    int64
		Sessions int
		Files    int
	}

	err := a.db().
		Model(&model.WatchSession{}).
		Select("COALESCE(SUM(duration_ms), 0) AS total, COUNT(*) AS sessions, COUNT(DISTINCT file_id) AS files").
		Where("started_at >= ? AND started_at <= ?", startMs, endMs).
		Scan(&row).
		Error
	if err != nil {
		queryFailed("range_sessions", err)
	} else {
		stats.TotalWatchMs = row.Total
		stats.SessionCount = row.Sessions
		stats.FileCount = row.Files
	}

	stats.SkipCount = int(a.count("range_skips", &model.SkipEvent{}, "timestamp >= ? AND timestamp <= ?", startMs, endMs))
	stats.LoopCount = int(a.count("range_loops", &model.LoopEvent{}, "timestamp >= ? AND timestamp <= ? AND loop_enabled = ?", startMs, endMs, true))

	return stats
}

// StatsForToday covers local midnight up to now.
func (a *Analytics) StatsForToday(now time.Time) TimeRangeStats {
	return a.StatsForRange(startOfDay(now).UnixMilli(), now.UnixMilli())
}

// StatsForThisWeek covers Monday 00:00 up to now.
func (a *Analytics) StatsForThisWeek(now time.Time) TimeRangeStats {
	start := startOfDay(now).AddDate(0, 0, -(dayOfWeek(now) - 1))
	return a.StatsForRange(start.UnixMilli(), now.UnixMilli())
}

// StatsForThisMonth covers the first of the month 00:00 up to now.
func (a *Analytics) StatsForThisMonth(now time.Time) TimeRangeStats {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return a.StatsForRange(start.UnixMilli(), now.UnixMilli())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CompletionStats lists files with a known duration by watch time, with
// their plays bucketed by completion.
func (a *Analytics) CompletionStats(limit int) []CompletionStats {
	out := []CompletionStats{}
	if !a.store.Enabled() {
		return out
	}

	var files []model.FileStats

	err := a.db().
		Where("duration_ms > 0").
		Order("total_watch_ms desc, id").
		Limit(limit).
		Find(&files).
		Error
	if err != nil {
		queryFailed("completion_stats", err)
		return out
	}

	for _, f := range files {
		c := CompletionStats{
			FilePath:                 f.FilePath,
			AverageCompletionPercent: completion(f),
		}

		switch {
		case c.AverageCompletionPercent >= 90:
			c.FullWatchCount = f.PlayCount
		case c.AverageCompletionPercent < 10:
			c.SkipCount = f.PlayCount
		default:
			c.PartialWatchCount = f.PlayCount
		}

		out = append(out, c)
	}

	return out
}

func completion(f model.FileStats) float64 {
	if f.DurationMs <= 0 {
		return 0
	}

	return float64(f.LastPositionMs) * 100 / float64(f.DurationMs)
}

// AverageCompletionRate averages completion over every file with a known
// duration.
func (a *Analytics) AverageCompletionRate() float64 {
	if !a.store.Enabled() {
		return 0
	}

	var avg sql.NullFloat64

	err := a.db().
		Model(&model.FileStats{}).
		Select("AVG(last_position_ms * 100.0 / duration_ms)").
		Where("duration_ms > 0").
		Scan(&avg).
		Error
	if err != nil {
		queryFailed("average_completion_rate", err)
		return 0
	}

	return avg.Float64
}

// DirectoryStats groups watched files by parent directory, most watched
// first. Equal totals are ordered by directory name.
func (a *Analytics) DirectoryStats(limit int) []DirectoryStats {
	out := []DirectoryStats{}
	if !a.store.Enabled() {
		return out
	}

	var files []model.FileStats

	err := a.db().
		Select("file_path", "total_watch_ms", "play_count").
		Where("total_watch_ms > 0").
		Find(&files).
		Error
	if err != nil {
		queryFailed("directory_stats", err)
		return out
	}

	byDir := map[string]*DirectoryStats{}
	for _, f := range files {
		dir := parentDir(f.FilePath)

		d, ok := byDir[dir]
		if !ok {
			d = &DirectoryStats{DirectoryPath: dir}
			byDir[dir] = d
		}

		d.TotalWatchMs += f.TotalWatchMs
		d.FileCount++
		d.PlayCount += f.PlayCount
	}

	for _, d := range byDir {
		out = append(out, *d)
	}

	slices.SortFunc(out, func(x, y DirectoryStats) int {
		if c := cmp.Compare(y.TotalWatchMs, x.TotalWatchMs); c != 0 {
			return c
		}
		return strings.Compare(x.DirectoryPath, y.DirectoryPath)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

// parentDir is everything before the last path separator, or "" for a bare
// file name.
func parentDir(p string) string {
	i := strings.LastIndexAny(p, `/\`)
	if i < 0 {
		return ""
	}

	return p[:i]
}

func (a *Analytics) MostWatchedDirectory() string {
	dirs := a.DirectoryStats(1)
	if len(dirs) == 0 {
		return ""
	}

	return dirs[0].DirectoryPath
}

// AverageSessionLength is the mean duration of stored sessions in ms.
func (a *Analytics) AverageSessionLength() float64 {
	if !a.store.Enabled() {
		return 0
	}

	var avg sql.NullFloat64

	err := a.db().
		Model(&model.WatchSession{}).
		Select("AVG(duration_ms)").
		Where("duration_ms > 0").
		Scan(&avg).
		Error
	if err != nil {
		queryFailed("average_session_length", err)
		return 0
	}

	return avg.Float64
}

func (a *Analytics) LongestSession() int64 {
	return a.scalarInt("longest_session", func(db *gorm.DB) *gorm.DB {
		return db.Model(&model.WatchSession{}).Select("COALESCE(MAX(duration_ms), 0)")
	})
}

func (a *Analytics) TotalScreenshots() int {
	return int(a.count("total_screenshots", &model.ScreenshotEvent{}, ""))
}

func (a *Analytics) TotalSkips() int {
	return int(a.count("total_skips", &model.SkipEvent{}, ""))
}

// TotalPauseTime sums the pause spans recorded on resume events.
func (a *Analytics) TotalPauseTime() int64 {
	return a.scalarInt("total_pause_time", func(db *gorm.DB) *gorm.DB {
		return db.
			Model(&model.PauseEvent{}).
			Select("COALESCE(SUM(pause_duration_ms), 0)").
			Where("pause_duration_ms > 0")
	})
}

// Summary assembles the dashboard headline figures. Real elapsed time is
// the span between the first session start and the last session end, so
// parallel playback in several cells shows up as a parallelism factor > 1.
func (a *Analytics) Summary(now time.Time) Summary {
	s := Summary{
		AccumulatedWatchMs: a.TotalWatchTime(),
		FilesTracked:       a.TotalFilesTracked(),
		TotalSessions:      int(a.count("total_sessions", &model.WatchSession{}, "")),
		AvgSessionMs:       a.AverageSessionLength(),
		LongestSessionMs:   a.LongestSession(),
		PeakHour:           a.PeakHour(),
		PeakDayOfWeek:      a.PeakDayOfWeek(),
		TotalSkips:         a.TotalSkips(),
		TotalScreenshots:   a.TotalScreenshots(),
		TotalPauseMs:       a.TotalPauseTime(),
		AvgCompletionRate:  a.AverageCompletionRate(),
		TopDirectory:       a.MostWatchedDirectory(),
	}

	s.RealElapsedMs = a.span(0)
	s.TodayRealMs = a.span(startOfDay(now).UnixMilli())

	today := a.StatsForToday(now)
	s.TodayWatchMs = today.TotalWatchMs
	s.TodaySessions = today.SessionCount

	s.ParallelismFactor = 1
	if s.RealElapsedMs > 0 {
		s.ParallelismFactor = float64(s.AccumulatedWatchMs) / float64(s.RealElapsedMs)
	}

	return s
}

// span is MAX(ended_at) - MIN(started_at) over sessions started after
// sinceMs.
func (a *Analytics) span(sinceMs int64) int64 {
	if !a.store.Enabled() {
		return 0
	}

	var row struct {
		FirstStart *int64
		LastEnd    *int64
	}

	err := a.db().
		Model(&model.WatchSession{}).
		Select("MIN(started_at) AS first_start, MAX(ended_at) AS last_end").
		Where("started_at > 0 AND started_at >= ?", sinceMs).
		Scan(&row).
		Error
	if err != nil {
		queryFailed("session_span", err)
		return 0
	}

	if row.FirstStart == nil || row.LastEnd == nil {
		return 0
	}

	return *row.LastEnd - *row.FirstStart
}

func (a *Analytics) count(name string, table any, where string, args ...any) int64 {
	if !a.store.Enabled() {
		return 0
	}

	q := a.db().Model(table)
	if where != "" {
		q = q.Where(where, args...)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		queryFailed(name, err)
		return 0
	}

	return n
}

func (a *Analytics) scalarInt(name string, build func(*gorm.DB) *gorm.DB) int64 {
	if !a.store.Enabled() {
		return 0
	}

	var n int64
	if err := build(a.db()).Scan(&n).Error; err != nil {
		queryFailed(name, err)
		return 0
	}

	return n
}
