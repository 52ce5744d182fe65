package models

import (
	"time"
)

// User roles. Admins manage work orders and workers; workers execute them.
const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;default:'worker'" json:"role"`
	Email        *string   `gorm:"type:varchar(255)" json:"email"`
	Phone        *string   `gorm:"type:varchar(50)" json:"phone"`
	ProfilePic   *string   `gorm:"type:varchar(255)" json:"profile_pic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	AssignedTasks []Task `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL" json:"-"`
}
