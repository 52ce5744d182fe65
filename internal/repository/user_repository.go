package repository

import (
	"fmt"

	"github.com/ykurohata/workorder-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithTasks finds a user by ID with assigned tasks loaded
func (r *GormUserRepository) FindByIDWithTasks(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("AssignedTasks").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByRole lists users holding the given role
func (r *GormUserRepository) ListByRole(role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("role = ?", role).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// RemoveWorkerWithTasks deletes a worker atomically: their unfinished
// tasks are deleted, their completed tasks are left in place without an
// assignee, then the user row goes.
func (r *GormUserRepository) RemoveWorkerWithTasks(userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assigned_to = ? AND status != ?", userID, models.TaskStatusDone).
			Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("deleting active tasks: %w", err)
		}

		if err := tx.Model(&models.Task{}).
			Where("assigned_to = ? AND status = ?", userID, models.TaskStatusDone).
			Update("assigned_to", nil).Error; err != nil {
			return fmt.Errorf("unassigning completed tasks: %w", err)
		}

		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}

		return nil
	})
}
