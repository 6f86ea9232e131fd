package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"goobert/stats-api/db"
	"goobert/stats-api/internal/model"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// monday is 14:00 local on Monday 11 March 2024.
var monday = time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stats.db")
	// The container check in db.New wants the file to exist up front.
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	gdb, err := db.New(db.Options{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(monday)
}

func newTestService(t *testing.T) (*Service, *clockwork.FakeClock) {
	t.Helper()

	clock := newFakeClock()
	return New(newTestDB(t), clock), clock
}

func fileRow(t *testing.T, s *Service, path string) model.FileStats {
	t.Helper()

	var f model.FileStats
	require.NoError(t, s.db.Where("file_path = ?", path).Limit(1).Find(&f).Error)

	return f
}

func sessionRows(t *testing.T, s *Service) []model.WatchSession {
	t.Helper()

	var rows []model.WatchSession
	require.NoError(t, s.db.Order("id").Find(&rows).Error)

	return rows
}

// watch runs a complete session of d on cell (0,0).
func watch(s *Service, clock *clockwork.FakeClock, path string, durationSec float64, d time.Duration) {
	cell := CellKey{}
	s.Tracker.Start(cell, path, durationSec, false)
	clock.Advance(d)
	s.Tracker.Stop(cell)
}
