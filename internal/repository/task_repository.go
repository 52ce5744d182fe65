package repository

import (
	"github.com/ykurohata/workorder-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListAll retrieves every task with its worker's name, deadline first
func (r *GormTaskRepository) ListAll() ([]TaskWithWorker, error) {
	var rows []TaskWithWorker
	err := r.db.Model(&models.Task{}).
		Select("tasks.*, users.username AS worker_name").
		Joins("LEFT JOIN users ON tasks.assigned_to = users.id").
		Order("CASE WHEN tasks.deadline IS NULL THEN 1 ELSE 0 END, tasks.deadline ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByAssignee retrieves the tasks assigned to one worker
func (r *GormTaskRepository) ListByAssignee(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("assigned_to = ?", userID).
		Order("CASE WHEN deadline IS NULL THEN 1 ELSE 0 END, deadline ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task permanently
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CompleteAndArchive persists a completed task and writes its archive row
// in one transaction. The archive insert targets the task_id unique index
// with DoNothing, so completing an already-archived task is a no-op there.
func (r *GormTaskRepository) CompleteAndArchive(task *models.Task, entry *models.CompletedTask) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}},
			DoNothing: true,
		}).Create(entry).Error
	})
}

// ListArchiveByWorker retrieves a worker's archive rows, newest first
func (r *GormTaskRepository) ListArchiveByWorker(workerID uint64) ([]models.CompletedTask, error) {
	var entries []models.CompletedTask
	err := r.db.Where("worker_id = ?", workerID).
		Order("completed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListForExport retrieves worker-assigned tasks joined with worker contact
// columns, deadline first
func (r *GormTaskRepository) ListForExport() ([]ExportRow, error) {
	var rows []ExportRow
	err := r.db.Model(&models.Task{}).
		Select("tasks.*, users.username AS worker_name, users.email AS worker_email, users.phone AS worker_phone").
		Joins("JOIN users ON tasks.assigned_to = users.id").
		Where("users.role = ?", models.RoleWorker).
		Order("CASE WHEN tasks.deadline IS NULL THEN 1 ELSE 0 END, tasks.deadline ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
