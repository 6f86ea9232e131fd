package stats

import (
	"slices"
	"time"

	"goobert/stats-api/internal/model"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	// FlushInterval is the default period between periodic flushes.
	FlushInterval = 10 * time.Second
	// MinSessionDuration is the floor below which watched time isn't persisted.
	MinSessionDuration = time.Second
)

// CellKey identifies one grid position.
type CellKey struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type activeSession struct {
	fileID    int64
	path      string
	cell      CellKey
	startedAt time.Time // wall clock, written to watch_sessions.started_at

	// Accounting window. Periodic flushes move windowStart forward and
	// zero pausedFor.
	windowStart time.Time
	pausedFor   time.Duration
	paused      bool
	pauseStart  time.Time

	isImage         bool
	lastPositionSec float64
	durationSec     float64
}

// watched is the unpaused time of the current window.
func (a *activeSession) watched(now time.Time) time.Duration {
	paused := a.pausedFor
	if a.paused && !a.isImage {
		paused += now.Sub(a.pauseStart)
	}

	return now.Sub(a.windowStart) - paused
}

// ActiveSession is a read-only view of a session in progress.
type ActiveSession struct {
	Cell            CellKey `json:"cell"`
	FileID          int64   `json:"file_id"`
	FilePath        string  `json:"file_path"`
	StartedAt       int64   `json:"started_at"`
	Paused          bool    `json:"paused"`
	IsImage         bool    `json:"is_image"`
	PendingMs       int64   `json:"pending_ms"`
	LastPositionSec float64 `json:"last_position_sec"`
	DurationSec     float64 `json:"duration_sec"`
}

// Tracker keeps at most one active session per cell and turns their
// unpaused wall-clock time into persisted watch time.
type Tracker struct {
	store    *Store
	clock    clockwork.Clock
	sessions map[CellKey]*activeSession
}

func NewTracker(store *Store, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Tracker{
		store:    store,
		clock:    clock,
		sessions: make(map[CellKey]*activeSession),
	}
}

// Start begins a session on cell, finalizing whatever was playing there.
// The play count moves even if the new session ends up too short to keep.
func (t *Tracker) Start(cell CellKey, path string, durationSec float64, isImage bool) {
	if !t.store.Enabled() || path == "" {
		return
	}

	if _, ok := t.sessions[cell]; ok {
		t.flush(cell)
	}

	fileID, err := t.store.FileID(path, durationSec, isImage)
	if err != nil {
		zap.L().Error("Failed to resolve file for session", zap.String("path", path), zap.Error(err))
		return
	}

	now := t.clock.Now()

	if err := t.store.markPlayed(fileID, now.UnixMilli()); err != nil {
		zap.L().Error("Failed to bump play count", zap.Int64("file_id", fileID), zap.Error(err))
	}

	t.sessions[cell] = &activeSession{
		fileID:      fileID,
		path:        path,
		cell:        cell,
		startedAt:   now,
		windowStart: now,
		isImage:     isImage,
		durationSec: durationSec,
	}

	zap.L().Debug("Session started", zap.Int("row", cell.Row), zap.Int("col", cell.Col), zap.String("path", path))
}

// UpdatePosition remembers the playback position. It's persisted on the
// next flush.
func (t *Tracker) UpdatePosition(cell CellKey, positionSec float64) {
	if s, ok := t.sessions[cell]; ok {
		s.lastPositionSec = positionSec
	}
}

// SetPaused opens or closes a pause span. Images keep counting while
// paused, so it does nothing for them.
func (t *Tracker) SetPaused(cell CellKey, paused bool) {
	s, ok := t.sessions[cell]
	if !ok || s.isImage {
		return
	}

	now := t.clock.Now()

	switch {
	case paused && !s.paused:
		s.pauseStart = now
		s.paused = true
	case !paused && s.paused:
		s.pausedFor += now.Sub(s.pauseStart)
		s.paused = false
	}
}

func (t *Tracker) Stop(cell CellKey) {
	if _, ok := t.sessions[cell]; ok {
		t.flush(cell)
	}
}

func (t *Tracker) StopAll() {
	for cell := range t.sessions {
		t.flush(cell)
	}
}

// flush finalizes the session on cell. Anything under MinSessionDuration is
// dropped without touching the database.
//
// The session row keeps the original start time but only carries the time
// accounted since the last periodic flush; the earlier windows are already
// in file_stats.total_watch_ms.
func (t *Tracker) flush(cell CellKey) {
	s, ok := t.sessions[cell]
	if !ok {
		return
	}
	delete(t.sessions, cell)

	now := t.clock.Now()
	watched := s.watched(now)

	if watched < MinSessionDuration {
		return
	}

	nowMs := now.UnixMilli()
	watchMs := watched.Milliseconds()

	if err := t.store.addWatchTime(s.fileID, watchMs, secToMs(s.lastPositionSec), nowMs, true); err != nil {
		zap.L().Error("Failed to update file stats", zap.Int64("file_id", s.fileID), zap.Error(err))
	}

	local := now.Local()

	err := t.store.insertSession(&model.WatchSession{
		FileID:     s.fileID,
		StartedAt:  s.startedAt.UnixMilli(),
		EndedAt:    nowMs,
		DurationMs: watchMs,
		CellRow:    cell.Row,
		CellCol:    cell.Col,
		HourOfDay:  local.Hour(),
		DayOfWeek:  dayOfWeek(local),
	})
	if err != nil {
		zap.L().Error("Failed to insert watch session", zap.Int64("file_id", s.fileID), zap.Error(err))
	}

	zap.L().Debug("Session flushed", zap.String("path", s.path), zap.Int64("watch_ms", watchMs))
}

// PeriodicFlush credits every session's current window to file_stats and
// starts a fresh window. No session rows are written. Windows still under
// MinSessionDuration keep accumulating.
func (t *Tracker) PeriodicFlush() {
	if !t.store.Enabled() {
		return
	}

	now := t.clock.Now()

	for _, s := range t.sessions {
		watched := s.watched(now)
		if watched < MinSessionDuration {
			continue
		}

		err := t.store.addWatchTime(s.fileID, watched.Milliseconds(), secToMs(s.lastPositionSec), now.UnixMilli(), false)
		if err != nil {
			zap.L().Error("Failed to save session progress", zap.Int64("file_id", s.fileID), zap.Error(err))
		}

		s.windowStart = now
		s.pausedFor = 0
		if s.paused {
			s.pauseStart = now
		}
	}
}

// Session returns a snapshot of the session on cell.
func (t *Tracker) Session(cell CellKey) (ActiveSession, bool) {
	s, ok := t.sessions[cell]
	if !ok {
		return ActiveSession{}, false
	}

	return t.snapshot(s), true
}

// Active returns a snapshot of every session, ordered by row then column.
func (t *Tracker) Active() []ActiveSession {
	out := make([]ActiveSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, t.snapshot(s))
	}

	slices.SortFunc(out, func(a, b ActiveSession) int {
		if a.Cell.Row != b.Cell.Row {
			return a.Cell.Row - b.Cell.Row
		}
		return a.Cell.Col - b.Cell.Col
	})

	return out
}

func (t *Tracker) snapshot(s *activeSession) ActiveSession {
	return ActiveSession{
		Cell:            s.cell,
		FileID:          s.fileID,
		FilePath:        s.path,
		StartedAt:       s.startedAt.UnixMilli(),
		Paused:          s.paused,
		IsImage:         s.isImage,
		PendingMs:       s.watched(t.clock.Now()).Milliseconds(),
		LastPositionSec: s.lastPositionSec,
		DurationSec:     s.durationSec,
	}
}
