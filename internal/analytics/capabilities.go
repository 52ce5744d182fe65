package analytics

import (
	"gorm.io/gorm"
)

// Capabilities records which optional timestamp columns the tasks table
// actually has. Stores created by older deployments lack both; the
// aggregator degrades instead of failing on them.
type Capabilities struct {
	HasCreatedAt   bool
	HasCompletedAt bool
}

// HasColumn reports whether the live schema exposes the column. It goes
// through the migrator so the answer is correct on every supported driver.
func HasColumn(db *gorm.DB, table, column string) bool {
	return db.Migrator().HasColumn(table, column)
}

// DetectCapabilities probes the tasks table once. Callers should hold on
// to the result for the lifetime of the store connection rather than
// re-probing per query.
func DetectCapabilities(db *gorm.DB) Capabilities {
	return Capabilities{
		HasCreatedAt:   HasColumn(db, "tasks", "created_at"),
		HasCompletedAt: HasColumn(db, "tasks", "completed_at"),
	}
}

// CompletionField returns the column recording when a task left the
// active state: completed_at when the schema has it, otherwise deadline
// as a degraded proxy. Callers must not treat the proxy as a true
// completion event.
func (c Capabilities) CompletionField() string {
	if c.HasCompletedAt {
		return "completed_at"
	}
	return "deadline"
}
