package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ykurohata/workorder-api/internal/dto"
	apierrors "github.com/ykurohata/workorder-api/internal/errors"
	"github.com/ykurohata/workorder-api/internal/middleware"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/services"
)

// TaskHandler coordinates work-order HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new work order.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		MachineID   string  `json:"machine_id"`
		Area        string  `json:"area"`
		Deadline    string  `json:"deadline"`
		Status      string  `json:"status"`
		AssignedTo  *uint64 `json:"assigned_to"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		MachineID:   req.MachineID,
		Area:        req.Area,
		Deadline:    req.Deadline,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		ActorID:     userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns the work orders visible to the caller: every task
// for admins, their own assignments for workers.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if role == models.RoleAdmin {
		rows, err := h.taskService.ListTasks()
		if err != nil {
			respondTaskError(c, err)
			return
		}

		items := make([]dto.TaskListItemDTO, len(rows))
		for i, row := range rows {
			items[i] = dto.ToTaskListItemDTO(row.Task, row.WorkerName)
		}
		c.JSON(http.StatusOK, gin.H{"tasks": items})
		return
	}

	tasks, err := h.taskService.ListAssignedTasks(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskDTO(task)
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// GetTask returns the work order loaded by the RequireTask middleware.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// UpdateStatus moves a work order through its lifecycle.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateStatus(services.UpdateStatusInput{
		TaskID:  task.ID,
		Status:  req.Status,
		ActorID: userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask removes a work order permanently.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ListCompleted returns the caller's archived completions.
func (h *TaskHandler) ListCompleted(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	entries, err := h.taskService.CompletedHistory(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.CompletedTaskDTO, len(entries))
	for i, entry := range entries {
		items[i] = dto.ToCompletedTaskDTO(entry)
	}
	c.JSON(http.StatusOK, gin.H{"completed_tasks": items})
}

// SuggestTasks drafts work orders for a reported problem using AI.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestRequest struct {
		MachineID string `json:"machine_id"`
		Area      string `json:"area"`
		Problem   string `json:"problem" binding:"required"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.SuggestWorkOrders(c.Request.Context(), services.SuggestInput{
		MachineID: req.MachineID,
		Area:      req.Area,
		Problem:   req.Problem,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidDeadline),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrAssigneeNotWorker),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
