// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FormatDuration renders milliseconds the way the dashboard shows them:
// "42s", "3m 12s" or "2h 5m".
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "0s"
	}

	seconds := ms / 1000

	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}

// ISOTime renders a unix millisecond timestamp as local ISO-8601 with second
// precision. Zero renders as an empty string.
func ISOTime(ms int64) string {
	if ms <= 0 {
		return ""
	}

	return time.UnixMilli(ms).Format("2006-01-02T15:04:05")
}

// DefaultDBPath is the per-user location the desktop player writes to.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	return filepath.Join(dir, "goobert", "goobert.db")
}
