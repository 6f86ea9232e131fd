// Package db contains things related to the stats database
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"goobert/stats-api/internal/model"
	"goobert/stats-api/pkg/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the database backend. Path is used by sqlite, DSN by
// postgres.
type Options struct {
	Driver string
	Path   string
	DSN    string
}

// New opens the stats database and brings the schema up to date.
func New(o Options) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch o.Driver {
	case "", "sqlite":
		// Inside a container the database must come from a volume
		if util.IsRunningInDocker() {
			if _, err := os.Stat(o.Path); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", o.Path)
			}
		}

		if err := os.MkdirAll(filepath.Dir(o.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory, %w", err)
		}

		dialector = sqlite.Open(o.Path)
	case "postgres":
		dialector = postgres.Open(o.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", o.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// WAL lets the dashboard read while the tracker writes
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			return nil, fmt.Errorf("failed to enable WAL mode, %w", err)
		}
	}

	tables := append(model.StatsTables(), &model.SchemaStep{})

	err = db.AutoMigrate(tables...)
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations, %w", err)
	}

	return db, nil
}
