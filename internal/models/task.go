package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// Task is a single work order raised against a machine or plant area.
type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	MachineID   *string    `gorm:"type:varchar(100)" json:"machine_id"`
	Area        *string    `gorm:"type:varchar(100)" json:"area"`
	Deadline    *time.Time `json:"deadline"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	AssignedTo  *uint64    `json:"assigned_to"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
}
