package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopCreditsWatchTime(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{Row: 0, Col: 0}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(5 * time.Second)
	s.Tracker.Stop(cell)

	f := fileRow(t, s, "/videos/a.mp4")
	assert.EqualValues(t, 5000, f.TotalWatchMs)
	assert.Equal(t, 1, f.PlayCount)
	assert.EqualValues(t, 120_000, f.DurationMs)
	assert.Equal(t, clock.Now().UnixMilli(), f.LastWatchedAt)

	rows := sessionRows(t, s)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 5000, rows[0].DurationMs)
	assert.Equal(t, monday.UnixMilli(), rows[0].StartedAt)
	assert.Equal(t, clock.Now().UnixMilli(), rows[0].EndedAt)
	assert.Equal(t, 14, rows[0].HourOfDay)
	assert.Equal(t, 1, rows[0].DayOfWeek)

	_, ok := s.Tracker.Session(cell)
	assert.False(t, ok)
}

func TestShortSessionOnlyCountsPlay(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(500 * time.Millisecond)
	s.Tracker.Stop(cell)

	f := fileRow(t, s, "/videos/a.mp4")
	assert.EqualValues(t, 0, f.TotalWatchMs)
	assert.Equal(t, 1, f.PlayCount)
	assert.Equal(t, monday.UnixMilli(), f.LastWatchedAt)
	assert.Empty(t, sessionRows(t, s))
}

func TestPausedTimeIsExcluded(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	s.Tracker.SetPaused(cell, true)
	clock.Advance(2 * time.Second)
	s.Tracker.SetPaused(cell, false)
	clock.Advance(3 * time.Second)
	s.Tracker.Stop(cell)

	assert.EqualValues(t, 3000, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)

	rows := sessionRows(t, s)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3000, rows[0].DurationMs)
}

func TestStopWhilePaused(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(4 * time.Second)
	s.Tracker.SetPaused(cell, true)
	clock.Advance(10 * time.Second)
	s.Tracker.Stop(cell)

	assert.EqualValues(t, 4000, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)
}

func TestImagesIgnorePause(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/pictures/b.jpg", 0, true)
	s.Tracker.SetPaused(cell, true)
	clock.Advance(4 * time.Second)
	s.Tracker.SetPaused(cell, false)
	s.Tracker.Stop(cell)

	f := fileRow(t, s, "/pictures/b.jpg")
	assert.True(t, f.IsImage)
	assert.EqualValues(t, 4000, f.TotalWatchMs)
}

func TestCellsAreIndependent(t *testing.T) {
	s, clock := newTestService(t)
	left, right := CellKey{Row: 0, Col: 0}, CellKey{Row: 0, Col: 1}

	s.Tracker.Start(left, "/videos/a.mp4", 120, false)
	s.Tracker.Start(right, "/videos/b.mp4", 60, false)
	s.Tracker.UpdatePosition(right, 12.5)
	clock.Advance(3 * time.Second)
	s.Tracker.Stop(left)

	assert.EqualValues(t, 3000, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)
	assert.EqualValues(t, 0, fileRow(t, s, "/videos/b.mp4").TotalWatchMs)

	active, ok := s.Tracker.Session(right)
	require.True(t, ok)
	assert.Equal(t, "/videos/b.mp4", active.FilePath)
	assert.Equal(t, 12.5, active.LastPositionSec)
	assert.EqualValues(t, 3000, active.PendingMs)

	assert.Len(t, s.Tracker.Active(), 1)
}

func TestStartOnBusyCellFlushesPrevious(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{Row: 1, Col: 2}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(2 * time.Second)
	s.Tracker.Start(cell, "/videos/b.mp4", 60, false)

	assert.EqualValues(t, 2000, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)

	rows := sessionRows(t, s)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].CellRow)
	assert.Equal(t, 2, rows[0].CellCol)

	active, ok := s.Tracker.Session(cell)
	require.True(t, ok)
	assert.Equal(t, "/videos/b.mp4", active.FilePath)
}

func TestPeriodicFlushCreditsWithoutSessionRow(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	s.Tracker.UpdatePosition(cell, 7)
	clock.Advance(FlushInterval)
	s.Tracker.PeriodicFlush()

	f := fileRow(t, s, "/videos/a.mp4")
	assert.EqualValues(t, 10_000, f.TotalWatchMs)
	assert.EqualValues(t, 7000, f.LastPositionMs)
	assert.Equal(t, monday.UnixMilli(), f.LastWatchedAt)
	assert.Empty(t, sessionRows(t, s))

	clock.Advance(4 * time.Second)
	s.Tracker.Stop(cell)

	assert.EqualValues(t, 14_000, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)

	// The row keeps the original start but only the time since the reset.
	rows := sessionRows(t, s)
	require.Len(t, rows, 1)
	assert.Equal(t, monday.UnixMilli(), rows[0].StartedAt)
	assert.EqualValues(t, 4000, rows[0].DurationMs)
}

func TestPeriodicFlushKeepsShortWindows(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(600 * time.Millisecond)
	s.Tracker.PeriodicFlush()
	clock.Advance(600 * time.Millisecond)
	s.Tracker.Stop(cell)

	assert.EqualValues(t, 1200, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)
}

func TestPeriodicFlushWhilePaused(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(3 * time.Second)
	s.Tracker.SetPaused(cell, true)
	clock.Advance(5 * time.Second)
	s.Tracker.PeriodicFlush()
	clock.Advance(5 * time.Second)
	s.Tracker.SetPaused(cell, false)
	clock.Advance(2 * time.Second)
	s.Tracker.Stop(cell)

	assert.EqualValues(t, 5000, fileRow(t, s, "/videos/a.mp4").TotalWatchMs)
}

func TestStopAll(t *testing.T) {
	s, clock := newTestService(t)

	s.Tracker.Start(CellKey{0, 0}, "/videos/a.mp4", 120, false)
	s.Tracker.Start(CellKey{0, 1}, "/videos/b.mp4", 120, false)
	s.Tracker.Start(CellKey{1, 0}, "/videos/c.mp4", 120, false)
	clock.Advance(2 * time.Second)
	s.Tracker.StopAll()

	assert.Empty(t, s.Tracker.Active())
	assert.Len(t, sessionRows(t, s), 3)
}

func TestActiveIsSortedByCell(t *testing.T) {
	s, _ := newTestService(t)

	s.Tracker.Start(CellKey{1, 0}, "/videos/c.mp4", 0, false)
	s.Tracker.Start(CellKey{0, 1}, "/videos/b.mp4", 0, false)
	s.Tracker.Start(CellKey{0, 0}, "/videos/a.mp4", 0, false)

	active := s.Tracker.Active()
	require.Len(t, active, 3)
	assert.Equal(t, CellKey{0, 0}, active[0].Cell)
	assert.Equal(t, CellKey{0, 1}, active[1].Cell)
	assert.Equal(t, CellKey{1, 0}, active[2].Cell)
}

func TestUnknownCellsAreIgnored(t *testing.T) {
	s, _ := newTestService(t)
	cell := CellKey{Row: 3, Col: 3}

	s.Tracker.UpdatePosition(cell, 10)
	s.Tracker.SetPaused(cell, true)
	s.Tracker.Stop(cell)

	assert.Empty(t, s.Tracker.Active())
}

func TestDisabledServiceIsInert(t *testing.T) {
	clock := newFakeClock()
	s := New(nil, clock)
	cell := CellKey{}

	assert.False(t, s.Enabled())

	s.Tracker.Start(cell, "/videos/a.mp4", 120, false)
	clock.Advance(5 * time.Second)
	s.Tracker.PeriodicFlush()
	s.Tracker.Stop(cell)
	s.LogSkip("/videos/a.mp4", 1, 2, "next")
	s.LogRename("/videos/a.mp4", "/videos/b.mp4")
	s.Exporter.ClearAll()

	assert.Empty(t, s.Tracker.Active())
	assert.Zero(t, s.Analytics.TotalWatchTime())
	assert.Empty(t, s.Analytics.MostWatched(10))
	assert.Len(t, s.Analytics.HourlyDistribution(), 24)
	assert.Equal(t, 1, s.Analytics.PeakDayOfWeek())

	_, err := s.FileID("/videos/a.mp4", 0, false)
	assert.ErrorIs(t, err, ErrDisabled)
}
