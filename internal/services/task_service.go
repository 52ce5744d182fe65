package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ykurohata/workorder-api/internal/analytics"
	"github.com/ykurohata/workorder-api/internal/constants"
	"github.com/ykurohata/workorder-api/internal/logging"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrInvalidDeadline        = errors.New("deadline is not a recognized date")
	ErrInvalidStatus          = errors.New("status must be Pending, In Progress or Done")
	ErrAssigneeNotWorker      = errors.New("assigned user must be an existing worker")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any work orders")
	ErrAINoValidTasks         = errors.New("no valid work orders could be created from AI output")
)

// TaskService handles work order business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	aiService *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, auditRepo repository.AuditLogRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		aiService: aiService,
	}
}

// CreateTaskInput represents input for creating a work order
type CreateTaskInput struct {
	Title       string
	Description string
	MachineID   string
	Area        string
	Deadline    string
	Status      string
	AssignedTo  *uint64
	ActorID     uint64
}

// CreateTask creates a new work order with validation
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := models.TaskStatusPending
	if input.Status != "" {
		parsed, ok := parseStatus(input.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	var deadline *time.Time
	if strings.TrimSpace(input.Deadline) != "" {
		parsed, ok := analytics.ParseTimestamp(input.Deadline)
		if !ok {
			return nil, ErrInvalidDeadline
		}
		deadline = &parsed
	}

	if input.AssignedTo != nil {
		if err := s.ensureWorker(*input.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		MachineID:   optionalString(input.MachineID),
		Area:        optionalString(input.Area),
		Deadline:    deadline,
		Status:      status,
		AssignedTo:  input.AssignedTo,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	recordAudit(s.auditRepo, &models.AuditLog{
		UserID:     &input.ActorID,
		Action:     models.AuditActionTaskCreated,
		EntityType: "task",
		EntityID:   &task.ID,
		NewValue:   task.Title,
	})

	return s.taskRepo.FindByID(task.ID, "Assignee")
}

// ListTasks returns every work order with its assignee's name
func (s *TaskService) ListTasks() ([]repository.TaskWithWorker, error) {
	tasks, err := s.taskRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListAssignedTasks returns the work orders assigned to one worker
func (s *TaskService) ListAssignedTasks(workerID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByAssignee(workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a work order with its assignee loaded
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// UpdateStatusInput represents input for a status change
type UpdateStatusInput struct {
	TaskID  uint64
	Status  string
	ActorID uint64
}

// UpdateStatus moves a work order through its lifecycle. The first move
// to Done stamps completed_at and writes the archive row; later moves
// never duplicate it.
func (s *TaskService) UpdateStatus(input UpdateStatusInput) (*models.Task, error) {
	newStatus, ok := parseStatus(input.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	oldStatus := task.Status
	task.Status = newStatus

	if newStatus == models.TaskStatusDone {
		if task.CompletedAt == nil {
			now := time.Now().UTC()
			task.CompletedAt = &now
		}
		entry := &models.CompletedTask{
			TaskID:      task.ID,
			Title:       task.Title,
			Description: task.Description,
			MachineID:   task.MachineID,
			Area:        task.Area,
			Deadline:    task.Deadline,
			WorkerID:    task.AssignedTo,
			CompletedAt: *task.CompletedAt,
		}
		if err := s.taskRepo.CompleteAndArchive(task, entry); err != nil {
			return nil, fmt.Errorf("failed to complete task: %w", err)
		}
	} else {
		if err := s.taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update status: %w", err)
		}
	}

	if oldStatus != newStatus {
		recordAudit(s.auditRepo, &models.AuditLog{
			UserID:     &input.ActorID,
			Action:     models.AuditActionStatusChanged,
			EntityType: "task",
			EntityID:   &task.ID,
			OldValue:   string(oldStatus),
			NewValue:   string(newStatus),
		})
	}

	return task, nil
}

// DeleteTask removes a work order permanently
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	recordAudit(s.auditRepo, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionTaskDeleted,
		EntityType: "task",
		EntityID:   &task.ID,
		OldValue:   task.Title,
	})

	return nil
}

// CompletedHistory returns the archive rows recorded for a worker
func (s *TaskService) CompletedHistory(workerID uint64) ([]models.CompletedTask, error) {
	entries, err := s.taskRepo.ListArchiveByWorker(workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	return entries, nil
}

// SuggestInput represents a problem report for AI-assisted drafting
type SuggestInput struct {
	MachineID string
	Area      string
	Problem   string
}

// SuggestWorkOrders uses AI to draft work orders for a reported problem
func (s *TaskService) SuggestWorkOrders(ctx context.Context, input SuggestInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.GenerateWorkOrders(ctx, input.MachineID, input.Area, input.Problem)
	if err != nil {
		return nil, fmt.Errorf("failed to generate work orders: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

// ensureWorker verifies that a user exists and holds the worker role
func (s *TaskService) ensureWorker(userID uint64) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotWorker
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	if user.Role != models.RoleWorker {
		return ErrAssigneeNotWorker
	}
	return nil
}

// recordAudit appends an audit entry outside the mutating transaction.
// A failed audit write never fails the operation it describes.
func recordAudit(auditRepo repository.AuditLogRepository, entry *models.AuditLog) {
	if err := auditRepo.Create(entry); err != nil {
		logging.L().Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

// parseStatus validates a raw status value
func parseStatus(raw string) (models.TaskStatus, bool) {
	switch status := models.TaskStatus(raw); status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusDone:
		return status, true
	}
	return "", false
}

// optionalString trims a form value and maps empty to NULL
func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
