package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goobert/stats-api/internal/stats"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Uploader pushes a finished export somewhere else. *aws.S3Client
// implements it.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader) error
}

// Snapshot is the result of one export run.
type Snapshot struct {
	FileStats string `json:"file_stats"`
	Sessions  string `json:"sessions"`
	Uploaded  bool   `json:"uploaded"`
}

// ScheduledExport writes both CSV exports into a directory, either on a
// cron schedule or on demand.
type ScheduledExport struct {
	loop     *Loop
	dir      string
	uploader Uploader
	cron     *cron.Cron
}

// NewScheduledExport creates an exporter writing into dir. uploader may be
// nil.
func NewScheduledExport(loop *Loop, dir string, uploader Uploader) *ScheduledExport {
	return &ScheduledExport{
		loop:     loop,
		dir:      dir,
		uploader: uploader,
	}
}

// Start runs the export on a standard five field cron schedule.
func (e *ScheduledExport) Start(schedule string) error {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		snap, err := e.Run(context.Background())
		if err != nil {
			zap.L().Error("Scheduled export failed", zap.Error(err))
			return
		}

		zap.L().Info("Scheduled export finished",
			zap.String("file_stats", snap.FileStats),
			zap.String("sessions", snap.Sessions),
			zap.Bool("uploaded", snap.Uploaded))
	})
	if err != nil {
		return fmt.Errorf("invalid export schedule, %w", err)
	}

	e.cron = c
	c.Start()

	zap.L().Debug("Scheduled export attached", zap.String("schedule", schedule), zap.String("dir", e.dir))

	return nil
}

// Stop waits for a running export to finish.
func (e *ScheduledExport) Stop() {
	if e.cron == nil {
		return
	}

	<-e.cron.Stop().Done()
}

// Run writes files-<stamp>.csv and sessions-<stamp>.csv and uploads them
// when an uploader is set.
func (e *ScheduledExport) Run(ctx context.Context) (*Snapshot, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory, %w", err)
	}

	snap := &Snapshot{}

	var exportErr error
	err := e.loop.Do(ctx, func(s *stats.Service) {
		stamp := e.freeStamp(s.Clock.Now())
		snap.FileStats = filepath.Join(e.dir, "files-"+stamp+".csv")
		snap.Sessions = filepath.Join(e.dir, "sessions-"+stamp+".csv")

		exportErr = errors.Join(
			s.Exporter.ExportFileStats(snap.FileStats),
			s.Exporter.ExportSessions(snap.Sessions),
		)
	})
	if err != nil {
		return nil, err
	}
	if exportErr != nil {
		return nil, fmt.Errorf("failed to export stats, %w", exportErr)
	}

	if e.uploader == nil {
		return snap, nil
	}

	for _, p := range []string{snap.FileStats, snap.Sessions} {
		if err := e.upload(ctx, p); err != nil {
			return snap, err
		}
	}

	snap.Uploaded = true
	return snap, nil
}

// freeStamp names a snapshot after t with millisecond precision. A taken
// stamp gets a -N suffix. Runs are serialized by the loop.
func (e *ScheduledExport) freeStamp(t time.Time) string {
	base := strings.Replace(t.Format("20060102-150405.000"), ".", "-", 1)

	stamp := base
	for n := 1; e.taken(stamp); n++ {
		stamp = fmt.Sprintf("%s-%d", base, n)
	}

	return stamp
}

func (e *ScheduledExport) taken(stamp string) bool {
	for _, prefix := range []string{"files-", "sessions-"} {
		if _, err := os.Stat(filepath.Join(e.dir, prefix+stamp+".csv")); err == nil {
			return true
		}
	}

	return false
}

func (e *ScheduledExport) upload(ctx context.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open export for upload, %w", err)
	}
	defer f.Close()

	return e.uploader.Upload(ctx, filepath.Base(p), f)
}
