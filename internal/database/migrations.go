package database

import (
	"fmt"

	"github.com/ykurohata/workorder-api/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes creates the indexes the dashboard queries lean on. The
// existence check goes through the migrator so it works on every
// supported driver.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_assigned_to", "assigned_to"},
		{"tasks", "idx_tasks_deadline", "deadline"},
		{"tasks", "idx_tasks_completed_at", "completed_at"},
		{"tasks", "idx_tasks_area", "area"},
		{"audit_logs", "idx_audit_logs_user_id", "user_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.L().Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
		)
	}

	return nil
}
