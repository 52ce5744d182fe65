package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ykurohata/workorder-api/internal/constants"
	"github.com/ykurohata/workorder-api/internal/dto"
	apierrors "github.com/ykurohata/workorder-api/internal/errors"
	"github.com/ykurohata/workorder-api/internal/logging"
	"github.com/ykurohata/workorder-api/internal/middleware"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/services"
	"go.uber.org/zap"
)

// allowedPictureExts lists the accepted profile picture extensions
var allowedPictureExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// UserHandler coordinates worker administration and profile handlers.
type UserHandler struct {
	userService *services.UserService
	taskService *services.TaskService
	uploadDir   string
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, taskService *services.TaskService, uploadDir string) *UserHandler {
	return &UserHandler{
		userService: userService,
		taskService: taskService,
		uploadDir:   uploadDir,
	}
}

// ListWorkers returns the worker directory.
func (h *UserHandler) ListWorkers(c *gin.Context) {
	workers, err := h.userService.ListWorkers()
	if err != nil {
		respondUserError(c, err)
		return
	}

	items := make([]dto.WorkerDTO, len(workers))
	for i, worker := range workers {
		items[i] = dto.ToWorkerDTO(worker)
	}
	c.JSON(http.StatusOK, gin.H{"workers": items})
}

// GetWorker returns one worker with their assigned work orders.
func (h *UserHandler) GetWorker(c *gin.Context) {
	workerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid worker ID")
		return
	}

	worker, err := h.userService.GetWorker(workerID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkerDetailDTO(*worker))
}

// RemoveWorker deletes a worker and reconciles their work orders.
func (h *UserHandler) RemoveWorker(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid worker ID")
		return
	}

	if err := h.userService.RemoveWorker(workerID, userID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Worker removed successfully",
	})
}

// ListAdmins returns the administrator directory.
func (h *UserHandler) ListAdmins(c *gin.Context) {
	admins, err := h.userService.ListAdmins()
	if err != nil {
		respondUserError(c, err)
		return
	}

	items := make([]dto.UserDTO, len(admins))
	for i, admin := range admins {
		items[i] = dto.ToUserDTO(admin)
	}
	c.JSON(http.StatusOK, gin.H{"admins": items})
}

// GetAdmin returns one administrator.
func (h *UserHandler) GetAdmin(c *gin.Context) {
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid admin ID")
		return
	}

	admin, err := h.userService.GetAdmin(adminID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*admin))
}

// GetProfile returns the caller's account; workers also get their
// completed work history.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	resp := dto.ProfileResponse{
		User:           dto.ToUserDTO(*user),
		CompletedTasks: []dto.CompletedTaskDTO{},
	}

	if user.Role == models.RoleWorker {
		entries, err := h.taskService.CompletedHistory(userID)
		if err != nil {
			respondUserError(c, err)
			return
		}
		resp.CompletedTasks = make([]dto.CompletedTaskDTO, len(entries))
		for i, entry := range entries {
			resp.CompletedTasks[i] = dto.ToCompletedTaskDTO(entry)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile updates the caller's account.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(services.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UploadProfilePicture stores a new profile picture and removes the one
// it replaces.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	file, err := c.FormFile("profile_pic")
	if err != nil {
		apierrors.BadRequest(c, "No file uploaded")
		return
	}

	if file.Size > constants.MaxUploadBytes {
		apierrors.BadRequest(c, "File too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPictureExts[ext] {
		apierrors.BadRequest(c, "Only jpg, jpeg, png and gif files are allowed")
		return
	}

	filename := uuid.New().String() + ext
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		apierrors.InternalError(c, "Failed to store file")
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		apierrors.InternalError(c, "Failed to store file")
		return
	}

	previous, err := h.userService.SetProfilePicture(userID, filename)
	if err != nil {
		removeUploadedFile(h.uploadDir, filename)
		respondUserError(c, err)
		return
	}

	if previous != nil {
		removeUploadedFile(h.uploadDir, *previous)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Profile picture updated",
		"profile_pic": filename,
	})
}

// DeleteProfilePicture removes the stored picture and clears the column.
func (h *UserHandler) DeleteProfilePicture(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	previous, err := h.userService.ClearProfilePicture(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	if previous != nil {
		removeUploadedFile(h.uploadDir, *previous)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile picture removed",
	})
}

// removeUploadedFile deletes a stored upload, tolerating files that are
// already gone.
func removeUploadedFile(dir, name string) {
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.L().Warn("failed to remove uploaded file",
			zap.String("path", path),
			zap.Error(err))
	}
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotWorker):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
