// Package service contains the long running background workers
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"goobert/stats-api/internal/stats"

	"go.uber.org/zap"
)

// ErrLoopStopped is returned by Do once the loop has shut down.
var ErrLoopStopped = errors.New("stats loop is stopped")

type call struct {
	fn   func(*stats.Service)
	done chan struct{}
}

// Loop is the only goroutine allowed to touch the stats service. HTTP
// handlers and scheduled jobs hand it work through Do.
type Loop struct {
	svc      *stats.Service
	interval time.Duration

	calls   chan call
	quit    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewLoop creates a loop that calls PeriodicFlush every interval. A
// non-positive interval falls back to stats.FlushInterval.
func NewLoop(svc *stats.Service, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = stats.FlushInterval
	}

	return &Loop{
		svc:      svc,
		interval: interval,
		calls:    make(chan call),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the loop goroutine. Calling it twice is a no-op.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

func (l *Loop) run() {
	ticker := l.svc.Clock.NewTicker(l.interval)
	defer ticker.Stop()

	zap.L().Debug("Stats loop started", zap.Duration("flush_every", l.interval))

	for {
		select {
		case c := <-l.calls:
			l.exec(c.fn)
			close(c.done)
		case <-ticker.Chan():
			l.exec(func(s *stats.Service) { s.Tracker.PeriodicFlush() })
		case <-l.quit:
			l.exec(func(s *stats.Service) { s.Tracker.StopAll() })
			close(l.stopped)

			zap.L().Debug("Stats loop stopped")
			return
		}
	}
}

// exec keeps a panicking call from taking the loop down with it.
func (l *Loop) exec(fn func(*stats.Service)) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Recovered from panic in stats loop", zap.Any("panic", r))
		}
	}()

	fn(l.svc)
}

// Do runs fn on the loop goroutine and waits for it to return. If ctx ends
// before the loop picks the call up, fn never runs.
func (l *Loop) Do(ctx context.Context, fn func(*stats.Service)) error {
	c := call{fn: fn, done: make(chan struct{})}

	select {
	case l.calls <- c:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-c.done
	return nil
}

// Stop finalizes every active session and ends the loop. It waits for the
// loop to exit, so the loop has to be started.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})

	<-l.stopped
}
