package db

import (
	"fmt"
	"time"

	"goobert/stats-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type step struct {
	name string
	sql  []string
}

// Databases written by the desktop player leave several columns NULL. The
// models scan into plain integers so those are normalized once.
var steps = []step{
	{
		name: "normalize_file_stats_nulls",
		sql: []string{
			"UPDATE file_stats SET last_watched_at = 0 WHERE last_watched_at IS NULL",
			"UPDATE file_stats SET created_at = 0 WHERE created_at IS NULL",
			"UPDATE file_stats SET updated_at = 0 WHERE updated_at IS NULL",
		},
	},
	{
		name: "normalize_watch_sessions_nulls",
		sql: []string{
			"UPDATE watch_sessions SET ended_at = 0 WHERE ended_at IS NULL",
			"UPDATE watch_sessions SET cell_row = 0 WHERE cell_row IS NULL",
			"UPDATE watch_sessions SET cell_col = 0 WHERE cell_col IS NULL",
			"UPDATE watch_sessions SET hour_of_day = 0 WHERE hour_of_day IS NULL",
			"UPDATE watch_sessions SET day_of_week = 1 WHERE day_of_week IS NULL",
		},
	},
	{
		name: "normalize_event_nulls",
		sql: []string{
			"UPDATE skip_events SET from_position_ms = 0 WHERE from_position_ms IS NULL",
			"UPDATE skip_events SET to_position_ms = 0 WHERE to_position_ms IS NULL",
			"UPDATE pause_events SET file_id = 0 WHERE file_id IS NULL",
			"UPDATE pause_events SET position_ms = 0 WHERE position_ms IS NULL",
			"UPDATE volume_events SET old_volume = 0 WHERE old_volume IS NULL",
			"UPDATE volume_events SET new_volume = 0 WHERE new_volume IS NULL",
			"UPDATE zoom_events SET file_id = 0 WHERE file_id IS NULL",
			"UPDATE screenshot_events SET file_id = 0 WHERE file_id IS NULL",
			"UPDATE screenshot_events SET position_ms = 0 WHERE position_ms IS NULL",
			"UPDATE screenshot_events SET screenshot_path = '' WHERE screenshot_path IS NULL",
			"UPDATE grid_events SET source_path = '' WHERE source_path IS NULL",
			"UPDATE grid_events SET filter = '' WHERE filter IS NULL",
			"UPDATE rotation_events SET file_id = 0 WHERE file_id IS NULL",
		},
	},
}

func migrate(db *gorm.DB) error {
	var applied []string

	err := db.
		Model(model.SchemaStep{}).
		Pluck("name", &applied).
		Error
	if err != nil {
		return fmt.Errorf("failed to load applied schema steps, %w", err)
	}

	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	for _, s := range steps {
		if done[s.name] {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, q := range s.sql {
				if err := tx.Exec(q).Error; err != nil {
					return err
				}
			}

			return tx.Create(&model.SchemaStep{
				Name:       s.name,
				Statements: len(s.sql),
				AppliedAt:  time.Now().UnixMilli(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s failed, %w", s.name, err)
		}

		zap.L().Debug("Applied schema step", zap.String("name", s.name))
	}

	return nil
}
