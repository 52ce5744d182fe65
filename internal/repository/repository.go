package repository

import (
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/utils"
)

// TaskWithWorker pairs a task with its assignee's name for the admin
// list view.
type TaskWithWorker struct {
	models.Task
	WorkerName *string `json:"worker_name"`
}

// ExportRow is one line of the task export: the task plus the worker
// contact columns the sheet carries.
type ExportRow struct {
	models.Task
	WorkerName  string  `json:"worker_name"`
	WorkerEmail *string `json:"worker_email"`
	WorkerPhone *string `json:"worker_phone"`
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListAll retrieves every task with its worker's name, deadline first
	ListAll() ([]TaskWithWorker, error)

	// ListByAssignee retrieves the tasks assigned to one worker
	ListByAssignee(userID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task permanently
	Delete(id uint64) error

	// CompleteAndArchive persists a completed task and writes its archive
	// row in one transaction; re-completion never duplicates the archive
	CompleteAndArchive(task *models.Task, entry *models.CompletedTask) error

	// ListArchiveByWorker retrieves a worker's archive rows, newest first
	ListArchiveByWorker(workerID uint64) ([]models.CompletedTask, error)

	// ListForExport retrieves worker-assigned tasks joined with worker
	// contact columns, deadline first
	ListForExport() ([]ExportRow, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByIDWithTasks finds a user by ID with assigned tasks loaded
	FindByIDWithTasks(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// ListByRole lists users holding the given role
	ListByRole(role string) ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// RemoveWorkerWithTasks deletes a worker and reconciles their tasks
	// within a single transaction.
	RemoveWorkerWithTasks(userID uint64) error
}

// AuditLogRepository defines the interface for the audit trail
type AuditLogRepository interface {
	// Create appends an audit entry
	Create(entry *models.AuditLog) error

	// List retrieves audit entries newest first plus the total count
	List(params utils.PaginationParams) ([]models.AuditLog, int64, error)
}
