// Package stats is the watch-time tracker and analytics engine. Nothing in
// here is safe for concurrent use: every call has to come from the goroutine
// that owns the Service (see service.Loop).
package stats

import (
	"errors"
	"fmt"
	"time"

	"goobert/stats-api/internal/model"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrDisabled is returned by the few calls that report errors when the
// database could not be initialized.
var ErrDisabled = errors.New("stats database is not initialized")

// Store owns the database connection and performs every read and write.
type Store struct {
	db    *gorm.DB
	clock clockwork.Clock
}

// NewStore wraps an already migrated database. A nil db yields a disabled
// store on which every call is a no-op.
func NewStore(db *gorm.DB, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Store{db: db, clock: clock}
}

// Enabled reports whether the store has a usable database.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

func (s *Store) nowMs() int64 {
	return s.clock.Now().UnixMilli()
}

// FileID returns the id of the file_stats row for path, inserting it with the
// seed duration and image flag when it doesn't exist yet.
func (s *Store) FileID(path string, durationSec float64, isImage bool) (int64, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}

	var f model.FileStats

	err := s.db.
		Where("file_path = ?", path).
		Limit(1).
		Find(&f).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to look up file, %w", err)
	}

	if f.ID != 0 {
		return f.ID, nil
	}

	now := s.nowMs()
	f = model.FileStats{
		FilePath:   path,
		DurationMs: secToMs(durationSec),
		IsImage:    isImage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.Create(&f).Error; err != nil {
		return 0, fmt.Errorf("failed to create file_stats entry, %w", err)
	}

	return f.ID, nil
}

func (s *Store) markPlayed(fileID, now int64) error {
	return s.db.
		Model(&model.FileStats{}).
		Where("id = ?", fileID).
		UpdateColumns(map[string]any{
			"play_count":      gorm.Expr("play_count + 1"),
			"last_watched_at": now,
			"updated_at":      now,
		}).
		Error
}

// addWatchTime credits watched milliseconds to a file. Final flushes also
// move last_watched_at, periodic ones don't.
func (s *Store) addWatchTime(fileID, watchMs, positionMs, now int64, final bool) error {
	cols := map[string]any{
		"total_watch_ms":   gorm.Expr("total_watch_ms + ?", watchMs),
		"last_position_ms": positionMs,
		"updated_at":       now,
	}
	if final {
		cols["last_watched_at"] = now
	}

	return s.db.
		Model(&model.FileStats{}).
		Where("id = ?", fileID).
		UpdateColumns(cols).
		Error
}

func (s *Store) insertSession(ws *model.WatchSession) error {
	return s.db.Create(ws).Error
}

// clear deletes every row of every stats table. Id sequences are left alone.
func (s *Store) clear() {
	for _, table := range model.StatsTables() {
		err := s.db.
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(table).
			Error
		if err != nil {
			zap.L().Error("Failed to clear stats table", zap.Error(err))
		}
	}
}

func secToMs(sec float64) int64 {
	return int64(sec * 1000)
}

func msToSec(ms int64) float64 {
	return float64(ms) / 1000
}

// dayOfWeek maps Go's Sunday-first weekday to 1-7 with Monday = 1.
func dayOfWeek(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}

	return wd
}
