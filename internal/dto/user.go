package dto

import (
	"github.com/ykurohata/workorder-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash never
// leaves the server.
type UserDTO struct {
	ID         uint64  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	ProfilePic *string `json:"profile_pic"`
}

// WorkerDTO represents a worker in the admin directory
type WorkerDTO struct {
	ID       uint64  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

// WorkerDetailDTO pairs a worker with their assigned work orders
type WorkerDetailDTO struct {
	ID       uint64    `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email"`
	Phone    *string   `json:"phone"`
	Tasks    []TaskDTO `json:"tasks"`
}

// ProfileResponse bundles the caller's account with their completed work
type ProfileResponse struct {
	User           UserDTO            `json:"user"`
	CompletedTasks []CompletedTaskDTO `json:"completed_tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Email:      user.Email,
		Phone:      user.Phone,
		ProfilePic: user.ProfilePic,
	}
}

// ToWorkerDTO converts a User model to WorkerDTO
func ToWorkerDTO(user models.User) WorkerDTO {
	return WorkerDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    user.Phone,
	}
}

// ToWorkerDetailDTO converts a worker with preloaded tasks to
// WorkerDetailDTO
func ToWorkerDetailDTO(user models.User) WorkerDetailDTO {
	tasks := make([]TaskDTO, len(user.AssignedTasks))
	for i, task := range user.AssignedTasks {
		tasks[i] = ToTaskDTO(task)
	}

	return WorkerDetailDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    user.Phone,
		Tasks:    tasks,
	}
}
