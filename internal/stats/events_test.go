package stats

import (
	"testing"
	"time"

	"goobert/stats-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsCreateFileRow(t *testing.T) {
	s, _ := newTestService(t)

	s.LogSkip("/v/new.mp4", 0, 10, "seek_fwd")

	f := fileRow(t, s, "/v/new.mp4")
	require.NotZero(t, f.ID)
	assert.Equal(t, 0, f.PlayCount)

	// Empty paths are dropped.
	s.LogSkip("", 0, 10, "next")
	assert.Equal(t, 1, s.Analytics.TotalSkips())
}

func TestLoopToggleBumpsCounter(t *testing.T) {
	s, _ := newTestService(t)

	s.LogLoopToggle("/v/a.mp4", true, 0)
	s.LogLoopToggle("/v/a.mp4", false, 3)
	s.LogLoopToggle("/v/a.mp4", true, 0)

	assert.Equal(t, 3, s.Analytics.LoopCountForFile("/v/a.mp4"))

	events := s.Analytics.LoopEvents("/v/a.mp4", 10)
	require.Len(t, events, 3)
	assert.Equal(t, 3, events[1].LoopCount)
}

func TestResumeCarriesPauseDuration(t *testing.T) {
	s, clock := newTestService(t)

	s.LogPause("/v/a.mp4", 12, true)
	clock.Advance(2500 * time.Millisecond)
	s.LogPause("/v/a.mp4", 12, false)

	// A resume without a preceding pause has nothing to measure.
	clock.Advance(time.Second)
	s.LogPause("/v/a.mp4", 13, false)

	events := s.Analytics.PauseEvents("/v/a.mp4", 10)
	require.Len(t, events, 3)
	assert.EqualValues(t, 0, events[0].PauseDurationMs)
	assert.EqualValues(t, 2500, events[1].PauseDurationMs)
	assert.False(t, events[1].IsPause)
	assert.True(t, events[2].IsPause)
	assert.EqualValues(t, 12_000, events[2].PositionMs)

	assert.EqualValues(t, 2500, s.Analytics.TotalPauseTime())
}

func TestRenameKeepsStats(t *testing.T) {
	s, clock := newTestService(t)

	watch(s, clock, "/v/old.mp4", 60, 3*time.Second)
	before := fileRow(t, s, "/v/old.mp4")

	s.LogRename("/v/old.mp4", "/v/new.mp4")

	after := fileRow(t, s, "/v/new.mp4")
	assert.Equal(t, before.ID, after.ID)
	assert.EqualValues(t, 3000, after.TotalWatchMs)
	assert.Equal(t, 1, after.PlayCount)
	assert.Zero(t, fileRow(t, s, "/v/old.mp4").ID)

	history := s.Analytics.RenameHistory(10)
	require.Len(t, history, 1)
	assert.Equal(t, "/v/old.mp4", history[0].OldPath)
	assert.Equal(t, "/v/new.mp4", history[0].NewPath)
}

func TestRenameDuringActiveSession(t *testing.T) {
	s, clock := newTestService(t)
	cell := CellKey{}

	s.Tracker.Start(cell, "/v/old.mp4", 60, false)
	s.LogRename("/v/old.mp4", "/v/new.mp4")
	clock.Advance(2 * time.Second)
	s.Tracker.Stop(cell)

	// The session is credited by id, so the renamed row gets the time.
	assert.EqualValues(t, 2000, fileRow(t, s, "/v/new.mp4").TotalWatchMs)

	sessions := s.Analytics.SessionsForFile("/v/new.mp4", 10)
	require.Len(t, sessions, 1)
}

func TestFullscreenAndGridEvents(t *testing.T) {
	s, _ := newTestService(t)

	s.LogFullscreen(true, false, -1, -1)
	s.LogFullscreen(false, false, -1, -1)
	s.LogGrid(3, 3, "/v", "", false)

	var fs []model.FullscreenEvent
	require.NoError(t, s.db.Order("id").Find(&fs).Error)
	require.Len(t, fs, 2)
	assert.Equal(t, -1, fs[0].CellRow)
	assert.False(t, fs[1].IsFullscreen)

	grid := s.Analytics.GridHistory(10)
	require.Len(t, grid, 1)
	assert.False(t, grid[0].IsStart)
	assert.Equal(t, 3, grid[0].Rows)
}
