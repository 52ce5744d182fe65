package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ykurohata/workorder-api/internal/constants"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrNotWorker = errors.New("user is not a worker")

// UserService handles worker administration and self-service profiles
type UserService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, auditRepo repository.AuditLogRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// ListWorkers returns every worker account
func (s *UserService) ListWorkers() ([]models.User, error) {
	workers, err := s.userRepo.ListByRole(models.RoleWorker)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

// GetWorker returns a worker along with their assigned tasks
func (s *UserService) GetWorker(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByIDWithTasks(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find worker: %w", err)
	}
	if user.Role != models.RoleWorker {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListAdmins returns every administrator account
func (s *UserService) ListAdmins() ([]models.User, error) {
	admins, err := s.userRepo.ListByRole(models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// GetAdmin returns an administrator by ID
func (s *UserService) GetAdmin(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetProfile returns the caller's own account
func (s *UserService) GetProfile(userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// RemoveWorker deletes a worker account. Their unfinished tasks are
// deleted with them; finished tasks survive unassigned.
func (s *UserService) RemoveWorker(workerID, actorID uint64) error {
	user, err := s.userRepo.FindByID(workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find worker: %w", err)
	}
	if user.Role != models.RoleWorker {
		return ErrNotWorker
	}

	if err := s.userRepo.RemoveWorkerWithTasks(workerID); err != nil {
		return fmt.Errorf("failed to remove worker: %w", err)
	}

	recordAudit(s.auditRepo, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionWorkerRemoved,
		EntityType: "user",
		EntityID:   &workerID,
		OldValue:   user.Username,
	})

	return nil
}

// UpdateProfileInput represents the editable fields of an account
type UpdateProfileInput struct {
	UserID   uint64
	Username string
	Phone    string
	Email    string
	Password string
}

// UpdateProfile updates the caller's own account. The password is
// re-hashed only when a new one is provided.
func (s *UserService) UpdateProfile(input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if username != user.Username {
		if existing, err := s.userRepo.FindByUsername(username); err == nil && existing.ID != user.ID {
			return nil, ErrUsernameTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		user.Username = username
	}

	user.Phone = optionalString(input.Phone)
	user.Email = optionalString(input.Email)

	if input.Password != "" {
		if len(input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// SetProfilePicture stores the new picture path and returns the one it
// replaced so the caller can remove the file.
func (s *UserService) SetProfilePicture(userID uint64, path string) (*string, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	previous := user.ProfilePic
	user.ProfilePic = &path
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	return previous, nil
}

// ClearProfilePicture clears the picture column and returns the path
// that was stored, if any.
func (s *UserService) ClearProfilePicture(userID uint64) (*string, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	previous := user.ProfilePic
	if previous == nil {
		return nil, nil
	}

	user.ProfilePic = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to clear profile picture: %w", err)
	}

	return previous, nil
}
