package stats

import (
	"testing"
	"time"

	"goobert/stats-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFile(t *testing.T, s *Service, f model.FileStats) model.FileStats {
	t.Helper()

	require.NoError(t, s.db.Create(&f).Error)
	return f
}

func seedSession(t *testing.T, s *Service, ws model.WatchSession) {
	t.Helper()

	require.NoError(t, s.db.Create(&ws).Error)
}

func TestLastPosition(t *testing.T) {
	s, _ := newTestService(t)

	seedFile(t, s, model.FileStats{FilePath: "/v/almost-done.mp4", DurationMs: 100_000, LastPositionMs: 96_000})
	seedFile(t, s, model.FileStats{FilePath: "/v/midway.mp4", DurationMs: 100_000, LastPositionMs: 80_000})
	seedFile(t, s, model.FileStats{FilePath: "/v/unknown-length.mp4", LastPositionMs: 42_000})

	assert.Equal(t, 0.0, s.Analytics.LastPosition("/v/almost-done.mp4"))
	assert.Equal(t, 80.0, s.Analytics.LastPosition("/v/midway.mp4"))
	assert.Equal(t, 42.0, s.Analytics.LastPosition("/v/unknown-length.mp4"))
	assert.Equal(t, 0.0, s.Analytics.LastPosition("/v/never-seen.mp4"))
}

func TestMostAndRecentlyWatched(t *testing.T) {
	s, _ := newTestService(t)

	seedFile(t, s, model.FileStats{FilePath: "/v/a.mp4", TotalWatchMs: 1000, LastWatchedAt: 300})
	seedFile(t, s, model.FileStats{FilePath: "/v/b.mp4", TotalWatchMs: 9000, LastWatchedAt: 100})
	seedFile(t, s, model.FileStats{FilePath: "/v/c.mp4", TotalWatchMs: 5000, LastWatchedAt: 200})
	seedFile(t, s, model.FileStats{FilePath: "/v/unplayed.mp4"})

	most := s.Analytics.MostWatched(2)
	require.Len(t, most, 2)
	assert.Equal(t, "/v/b.mp4", most[0].FilePath)
	assert.Equal(t, "/v/c.mp4", most[1].FilePath)

	recent := s.Analytics.RecentlyWatched(10)
	require.Len(t, recent, 3)
	assert.Equal(t, "/v/a.mp4", recent[0].FilePath)

	assert.EqualValues(t, 15_000, s.Analytics.TotalWatchTime())
	assert.Equal(t, 3, s.Analytics.TotalFilesTracked())
}

func TestDistributionsAndPeaks(t *testing.T) {
	s, _ := newTestService(t)

	assert.Equal(t, 0, s.Analytics.PeakHour())
	assert.Equal(t, 1, s.Analytics.PeakDayOfWeek())

	f := seedFile(t, s, model.FileStats{FilePath: "/v/a.mp4"})
	seedSession(t, s, model.WatchSession{FileID: f.ID, StartedAt: 1, DurationMs: 1000, HourOfDay: 3, DayOfWeek: 7})
	seedSession(t, s, model.WatchSession{FileID: f.ID, StartedAt: 2, DurationMs: 5000, HourOfDay: 20, DayOfWeek: 6})
	seedSession(t, s, model.WatchSession{FileID: f.ID, StartedAt: 3, DurationMs: 2000, HourOfDay: 9, DayOfWeek: 3})
	seedSession(t, s, model.WatchSession{FileID: f.ID, StartedAt: 4, DurationMs: 3000, HourOfDay: 9, DayOfWeek: 3})

	hourly := s.Analytics.HourlyDistribution()
	require.Len(t, hourly, 24)
	assert.EqualValues(t, 5000, hourly[9].TotalWatchMs)
	assert.Equal(t, 2, hourly[9].SessionCount)
	assert.EqualValues(t, 0, hourly[10].TotalWatchMs)

	daily := s.Analytics.DailyDistribution()
	require.Len(t, daily, 7)
	assert.Equal(t, 1, daily[0].DayOfWeek)
	assert.EqualValues(t, 1000, daily[6].TotalWatchMs)

	// 09:00 and 20:00 tie on 5000ms, Wednesday and Saturday as well.
	assert.Equal(t, 9, s.Analytics.PeakHour())
	assert.Equal(t, 3, s.Analytics.PeakDayOfWeek())
}

func TestCompletionStats(t *testing.T) {
	s, _ := newTestService(t)

	seedFile(t, s, model.FileStats{FilePath: "/v/full.mp4", TotalWatchMs: 3000, PlayCount: 4, DurationMs: 1000, LastPositionMs: 950})
	seedFile(t, s, model.FileStats{FilePath: "/v/partial.mp4", TotalWatchMs: 2000, PlayCount: 2, DurationMs: 1000, LastPositionMs: 500})
	seedFile(t, s, model.FileStats{FilePath: "/v/skipped.mp4", TotalWatchMs: 1000, PlayCount: 1, DurationMs: 1000, LastPositionMs: 50})
	seedFile(t, s, model.FileStats{FilePath: "/p/image.jpg", TotalWatchMs: 9000, PlayCount: 1, IsImage: true})

	stats := s.Analytics.CompletionStats(10)
	require.Len(t, stats, 3)

	assert.Equal(t, "/v/full.mp4", stats[0].FilePath)
	assert.InDelta(t, 95.0, stats[0].AverageCompletionPercent, 0.001)
	assert.Equal(t, 4, stats[0].FullWatchCount)

	assert.Equal(t, 2, stats[1].PartialWatchCount)
	assert.Equal(t, 1, stats[2].SkipCount)

	assert.InDelta(t, (95.0+50.0+5.0)/3, s.Analytics.AverageCompletionRate(), 0.001)
}

func TestDirectoryStats(t *testing.T) {
	s, _ := newTestService(t)

	seedFile(t, s, model.FileStats{FilePath: "/b/one.mp4", TotalWatchMs: 2000, PlayCount: 1})
	seedFile(t, s, model.FileStats{FilePath: "/b/two.mp4", TotalWatchMs: 3000, PlayCount: 2})
	seedFile(t, s, model.FileStats{FilePath: "/a/three.mp4", TotalWatchMs: 5000, PlayCount: 1})
	seedFile(t, s, model.FileStats{FilePath: `C:\clips\four.mp4`, TotalWatchMs: 1000, PlayCount: 1})
	seedFile(t, s, model.FileStats{FilePath: "/c/unwatched.mp4"})

	dirs := s.Analytics.DirectoryStats(10)
	require.Len(t, dirs, 3)

	// Equal totals fall back to the directory name.
	assert.Equal(t, DirectoryStats{DirectoryPath: "/a", TotalWatchMs: 5000, FileCount: 1, PlayCount: 1}, dirs[0])
	assert.Equal(t, DirectoryStats{DirectoryPath: "/b", TotalWatchMs: 5000, FileCount: 2, PlayCount: 3}, dirs[1])
	assert.Equal(t, `C:\clips`, dirs[2].DirectoryPath)

	assert.Equal(t, "/a", s.Analytics.MostWatchedDirectory())
	assert.Len(t, s.Analytics.DirectoryStats(1), 1)
}

func TestStatsForRange(t *testing.T) {
	s, clock := newTestService(t)

	watch(s, clock, "/v/a.mp4", 60, 4*time.Second)
	s.LogSkip("/v/a.mp4", 3, 30, "seek_fwd")
	s.LogLoopToggle("/v/a.mp4", true, 0)
	s.LogLoopToggle("/v/a.mp4", false, 2)

	clock.Advance(time.Minute)
	watch(s, clock, "/v/b.mp4", 60, 2*time.Second)
	watch(s, clock, "/v/b.mp4", 60, 3*time.Second)

	today := s.Analytics.StatsForToday(clock.Now())
	assert.EqualValues(t, 9000, today.TotalWatchMs)
	assert.Equal(t, 3, today.SessionCount)
	assert.Equal(t, 2, today.FileCount)
	assert.Equal(t, 1, today.SkipCount)
	assert.Equal(t, 1, today.LoopCount)

	week := s.Analytics.StatsForThisWeek(clock.Now())
	assert.Equal(t, today.TotalWatchMs, week.TotalWatchMs)
	assert.Equal(t, startOfDay(monday).UnixMilli(), week.StartTime)

	month := s.Analytics.StatsForThisMonth(clock.Now())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local).UnixMilli(), month.StartTime)

	empty := s.Analytics.StatsForRange(0, monday.UnixMilli()-1)
	assert.Zero(t, empty.SessionCount)

	assert.EqualValues(t, 4000, s.Analytics.WatchTimeForRange(monday.UnixMilli(), monday.UnixMilli()))
}

func TestTimelineAndSummary(t *testing.T) {
	s, clock := newTestService(t)

	// Two cells overlapping on Monday.
	s.Tracker.Start(CellKey{0, 0}, "/v/a.mp4", 0, false)
	s.Tracker.Start(CellKey{0, 1}, "/v/b.mp4", 0, false)
	clock.Advance(10 * time.Second)
	s.Tracker.StopAll()

	clock.Advance(24 * time.Hour)
	watch(s, clock, "/v/a.mp4", 0, 6*time.Second)

	days := s.Analytics.Timeline(7, clock.Now())
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-11", days[0].Date)
	assert.EqualValues(t, 20_000, days[0].TotalWatchMs)
	assert.Equal(t, 2, days[0].SessionCount)
	assert.EqualValues(t, 10_000, days[0].RealMs())
	assert.Equal(t, "2024-03-12", days[1].Date)

	sum := s.Analytics.Summary(clock.Now())
	assert.EqualValues(t, 26_000, sum.AccumulatedWatchMs)
	assert.Equal(t, 3, sum.TotalSessions)
	assert.EqualValues(t, 10_000, sum.LongestSessionMs)
	assert.InDelta(t, 26_000.0/3, sum.AvgSessionMs, 0.001)
	assert.EqualValues(t, 6000, sum.TodayWatchMs)
	assert.Equal(t, 1, sum.TodaySessions)
	assert.EqualValues(t, 6000, sum.TodayRealMs)
	assert.EqualValues(t, (24*time.Hour + 16*time.Second).Milliseconds(), sum.RealElapsedMs)
	assert.Equal(t, "/v", sum.TopDirectory)
	assert.Equal(t, 1, sum.PeakDayOfWeek)
	assert.Equal(t, 14, sum.PeakHour)
}

func TestSessionsForFile(t *testing.T) {
	s, clock := newTestService(t)

	watch(s, clock, "/v/a.mp4", 0, 2*time.Second)
	watch(s, clock, "/v/b.mp4", 0, 2*time.Second)
	watch(s, clock, "/v/a.mp4", 0, 3*time.Second)

	sessions := s.Analytics.SessionsForFile("/v/a.mp4", 10)
	require.Len(t, sessions, 2)
	assert.Equal(t, "/v/a.mp4", sessions[0].FilePath)
	assert.EqualValues(t, 3000, sessions[0].DurationMs)

	recent := s.Analytics.RecentSessions(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "/v/a.mp4", recent[0].FilePath)
	assert.Equal(t, "/v/b.mp4", recent[1].FilePath)
}

func TestEventHistory(t *testing.T) {
	s, clock := newTestService(t)

	s.LogSkip("/v/a.mp4", 1, 2, "next")
	clock.Advance(time.Second)
	s.LogFullscreen(true, true, 1, 2)
	clock.Advance(time.Second)
	s.LogSkip("/v/b.mp4", 5, 0, "prev")
	clock.Advance(time.Second)
	s.LogLoopToggle("/v/b.mp4", true, 0)
	clock.Advance(time.Second)
	s.LogVolume(50, 0, true)
	s.LogGrid(2, 3, "/v", "*.mp4", true)
	s.LogScreenshot("/v/a.mp4", 12, "/shots/a.png")
	s.LogZoom("/v/a.mp4", 2, 0.1, -0.1)
	s.LogRotation("/v/b.mp4", 90)

	skips := s.Analytics.SkipEvents("", 10)
	require.Len(t, skips, 2)
	assert.Equal(t, "/v/b.mp4", skips[0].FilePath)
	assert.Equal(t, "prev", skips[0].SkipType)

	onlyA := s.Analytics.SkipEvents("/v/a.mp4", 10)
	require.Len(t, onlyA, 1)
	assert.EqualValues(t, 2000, onlyA[0].ToPositionMs)

	feed := s.Analytics.RecentEvents("all", 10)
	require.Len(t, feed, 4)
	assert.Equal(t, FeedEvent{Kind: "loop", FilePath: "/v/b.mp4", Timestamp: monday.Add(3 * time.Second).UnixMilli(), Detail: "enabled"}, feed[0])
	assert.Equal(t, "skip", feed[1].Kind)
	assert.Equal(t, "enter tile [1,2]", feed[2].Detail)
	assert.Equal(t, "/v/a.mp4", feed[3].FilePath)

	assert.Len(t, s.Analytics.RecentEvents("skip", 10), 2)
	assert.Len(t, s.Analytics.RecentEvents("all", 3), 3)

	vol := s.Analytics.VolumeHistory(10)
	require.Len(t, vol, 1)
	assert.True(t, vol[0].IsMute)

	grid := s.Analytics.GridHistory(10)
	require.Len(t, grid, 1)
	assert.Equal(t, "*.mp4", grid[0].Filter)

	shots := s.Analytics.ScreenshotHistory(10)
	require.Len(t, shots, 1)
	assert.Equal(t, "/v/a.mp4", shots[0].FilePath)
	assert.EqualValues(t, 12_000, shots[0].PositionMs)
	assert.Equal(t, 1, s.Analytics.TotalScreenshots())
	assert.Equal(t, 2, s.Analytics.TotalSkips())

	zooms := s.Analytics.ZoomEvents("/v/a.mp4", 10)
	require.Len(t, zooms, 1)
	assert.Equal(t, 2.0, zooms[0].ZoomLevel)

	rot := s.Analytics.RotationEvents("", 10)
	require.Len(t, rot, 1)
	assert.Equal(t, 90, rot[0].Rotation)

	assert.Len(t, s.Analytics.FullscreenHistory(10), 1)
}
