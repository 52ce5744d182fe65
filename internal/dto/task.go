package dto

import (
	"time"

	"github.com/ykurohata/workorder-api/internal/models"
)

// TaskDTO represents a work order in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	MachineID   *string           `json:"machine_id"`
	Area        *string           `json:"area"`
	Deadline    *time.Time        `json:"deadline"`
	Status      models.TaskStatus `json:"status"`
	AssignedTo  *uint64           `json:"assigned_to"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at"`
	Assignee    *UserDTO          `json:"assignee,omitempty"`
}

// TaskListItemDTO represents a work order in the admin list view,
// carrying the assignee's name instead of the full relation
type TaskListItemDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	MachineID   *string           `json:"machine_id"`
	Area        *string           `json:"area"`
	Deadline    *time.Time        `json:"deadline"`
	Status      models.TaskStatus `json:"status"`
	AssignedTo  *uint64           `json:"assigned_to"`
	WorkerName  *string           `json:"worker_name"`
}

// CompletedTaskDTO represents an archive row in API responses
type CompletedTaskDTO struct {
	ID          uint64     `json:"id"`
	TaskID      uint64     `json:"task_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MachineID   *string    `json:"machine_id"`
	Area        *string    `json:"area"`
	Deadline    *time.Time `json:"deadline"`
	WorkerID    *uint64    `json:"worker_id"`
	CompletedAt time.Time  `json:"completed_at"`
}

// AuditLogDTO represents an audit trail entry in API responses
type AuditLogDTO struct {
	ID         uint64    `json:"id"`
	UserID     *uint64   `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *uint64   `json:"entity_id"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		MachineID:   task.MachineID,
		Area:        task.Area,
		Deadline:    task.Deadline,
		Status:      task.Status,
		AssignedTo:  task.AssignedTo,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskListItemDTO converts a Task model plus its worker's name to
// TaskListItemDTO
func ToTaskListItemDTO(task models.Task, workerName *string) TaskListItemDTO {
	return TaskListItemDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		MachineID:   task.MachineID,
		Area:        task.Area,
		Deadline:    task.Deadline,
		Status:      task.Status,
		AssignedTo:  task.AssignedTo,
		WorkerName:  workerName,
	}
}

// ToCompletedTaskDTO converts a CompletedTask model to CompletedTaskDTO
func ToCompletedTaskDTO(entry models.CompletedTask) CompletedTaskDTO {
	return CompletedTaskDTO{
		ID:          entry.ID,
		TaskID:      entry.TaskID,
		Title:       entry.Title,
		Description: entry.Description,
		MachineID:   entry.MachineID,
		Area:        entry.Area,
		Deadline:    entry.Deadline,
		WorkerID:    entry.WorkerID,
		CompletedAt: entry.CompletedAt,
	}
}

// ToAuditLogDTO converts an AuditLog model to AuditLogDTO
func ToAuditLogDTO(entry models.AuditLog) AuditLogDTO {
	dto := AuditLogDTO{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		CreatedAt:  entry.CreatedAt,
	}

	// Include the actor's name if preloaded
	if entry.User != nil && entry.User.ID != 0 {
		dto.Username = entry.User.Username
	}

	return dto
}
