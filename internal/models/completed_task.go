package models

import (
	"time"
)

// CompletedTask is an archive row written the first time a work order
// reaches Done. TaskID is unique so re-completing a task never duplicates
// the archive entry.
type CompletedTask struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	TaskID      uint64     `gorm:"uniqueIndex;not null" json:"task_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	MachineID   *string    `gorm:"type:varchar(100)" json:"machine_id"`
	Area        *string    `gorm:"type:varchar(100)" json:"area"`
	Deadline    *time.Time `json:"deadline"`
	WorkerID    *uint64    `json:"worker_id"`
	CompletedAt time.Time  `json:"completed_at"`

	// Relations
	Worker *User `gorm:"foreignKey:WorkerID;constraint:OnDelete:SET NULL" json:"worker,omitempty"`
}
