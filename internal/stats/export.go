package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"goobert/stats-api/internal/model"
	"goobert/stats-api/pkg/util"

	"go.uber.org/zap"
)

const (
	fileStatsHeader = "File Path,Total Watch Time (seconds),Play Count,Last Watched,Last Position (seconds),Duration (seconds),Is Image"
	sessionsHeader  = "Session ID,File Path,Started At,Ended At,Duration (seconds),Cell Row,Cell Col,Hour of Day,Day of Week"
)

// Exporter writes CSV dumps and wipes the statistics.
type Exporter struct {
	store   *Store
	tracker *Tracker
}

func NewExporter(store *Store, tracker *Tracker) *Exporter {
	return &Exporter{store: store, tracker: tracker}
}

// WriteFileStats writes one line per file ordered by total watch time.
func (e *Exporter) WriteFileStats(w io.Writer) error {
	if !e.store.Enabled() {
		return ErrDisabled
	}

	var files []model.FileStats

	err := e.store.db.
		Order("total_watch_ms desc, id").
		Find(&files).
		Error
	if err != nil {
		return fmt.Errorf("failed to load file stats, %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, fileStatsHeader)

	for _, f := range files {
		isImage := "No"
		if f.IsImage {
			isImage = "Yes"
		}

		fmt.Fprintf(bw, "%s,%s,%d,%s,%s,%s,%s\n",
			quote(f.FilePath),
			seconds(f.TotalWatchMs),
			f.PlayCount,
			quote(util.ISOTime(f.LastWatchedAt)),
			seconds(f.LastPositionMs),
			seconds(f.DurationMs),
			isImage,
		)
	}

	return bw.Flush()
}

// WriteSessions writes one line per watch session, newest first.
func (e *Exporter) WriteSessions(w io.Writer) error {
	if !e.store.Enabled() {
		return ErrDisabled
	}

	var rows []SessionInfo

	err := e.store.db.
		Table("watch_sessions ws").
		Select("ws.*, fs.file_path").
		Joins("JOIN file_stats fs ON ws.file_id = fs.id").
		Order("ws.started_at desc, ws.id desc").
		Scan(&rows).
		Error
	if err != nil {
		return fmt.Errorf("failed to load sessions, %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, sessionsHeader)

	for _, s := range rows {
		fmt.Fprintf(bw, "%d,%s,%s,%s,%s,%d,%d,%d,%d\n",
			s.ID,
			quote(s.FilePath),
			quote(util.ISOTime(s.StartedAt)),
			quote(util.ISOTime(s.EndedAt)),
			seconds(s.DurationMs),
			s.CellRow,
			s.CellCol,
			s.HourOfDay,
			s.DayOfWeek,
		)
	}

	return bw.Flush()
}

func (e *Exporter) ExportFileStats(path string) error {
	return writeFile(path, e.WriteFileStats)
}

func (e *Exporter) ExportSessions(path string) error {
	return writeFile(path, e.WriteSessions)
}

// ClearAll finalizes every active session, then deletes every row of every
// stats table.
func (e *Exporter) ClearAll() {
	if !e.store.Enabled() {
		return
	}

	e.tracker.StopAll()
	e.store.clear()

	zap.L().Info("Cleared all statistics")
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file, %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file, %w", err)
	}

	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func seconds(ms int64) string {
	return strconv.FormatFloat(msToSec(ms), 'f', -1, 64)
}
