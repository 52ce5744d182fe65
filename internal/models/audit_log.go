package models

import (
	"time"
)

// Audit actions recorded for admin-facing mutations.
const (
	AuditActionTaskCreated   = "task_created"
	AuditActionStatusChanged = "status_changed"
	AuditActionTaskDeleted   = "task_deleted"
	AuditActionWorkerRemoved = "worker_removed"
)

// AuditLog records who changed what. UserID is nullable so log rows
// survive the removal of the acting user.
type AuditLog struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	UserID     *uint64   `json:"user_id"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(50)" json:"entity_type"`
	EntityID   *uint64   `json:"entity_id"`
	OldValue   string    `gorm:"type:text" json:"old_value"`
	NewValue   string    `gorm:"type:text" json:"new_value"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}
