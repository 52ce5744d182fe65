package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/ykurohata/workorder-api/internal/constants"
	"github.com/ykurohata/workorder-api/internal/database"
	"github.com/ykurohata/workorder-api/internal/dto"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/repository"
	"github.com/ykurohata/workorder-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userTestEnv struct {
	db          *gorm.DB
	handler     *UserHandler
	userService *services.UserService
}

func setupUserTestEnv(t *testing.T) userTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.CompletedTask{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	userService := services.NewUserService(userRepo, auditRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, auditRepo, nil)
	handler := NewUserHandler(userService, taskService, t.TempDir())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return userTestEnv{
		db:          db,
		handler:     handler,
		userService: userService,
	}
}

func userTestContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func createTestAccount(t *testing.T, db *gorm.DB, username, role string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashed",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserHandler_ListWorkers(t *testing.T) {
	env := setupUserTestEnv(t)

	admin := createTestAccount(t, env.db, "admin", models.RoleAdmin)
	createTestAccount(t, env.db, "bravo", models.RoleWorker)
	createTestAccount(t, env.db, "alpha", models.RoleWorker)

	c, w := userTestContext(http.MethodGet, "/api/workers", nil, admin.ID)

	env.handler.ListWorkers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]dto.WorkerDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	workers := response["workers"]
	require.Len(t, workers, 2)
	require.Equal(t, "alpha", workers[0].Username)
	require.Equal(t, "bravo", workers[1].Username)
}

func TestUserHandler_GetWorker(t *testing.T) {
	env := setupUserTestEnv(t)

	admin := createTestAccount(t, env.db, "admin", models.RoleAdmin)
	worker := createTestAccount(t, env.db, "worker", models.RoleWorker)

	task := &models.Task{
		Title:      "Check coolant level",
		Status:     models.TaskStatusPending,
		AssignedTo: &worker.ID,
	}
	require.NoError(t, env.db.Create(task).Error)

	c, w := userTestContext(http.MethodGet, "/api/workers/2", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(worker.ID, 10)}}

	env.handler.GetWorker(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.WorkerDetailDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, worker.Username, response.Username)
	require.Len(t, response.Tasks, 1)
	require.Equal(t, task.Title, response.Tasks[0].Title)
}

func TestUserHandler_GetWorker_NotFound(t *testing.T) {
	env := setupUserTestEnv(t)

	admin := createTestAccount(t, env.db, "admin", models.RoleAdmin)

	c, w := userTestContext(http.MethodGet, "/api/workers/999", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	env.handler.GetWorker(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_RemoveWorker(t *testing.T) {
	env := setupUserTestEnv(t)

	admin := createTestAccount(t, env.db, "admin", models.RoleAdmin)
	worker := createTestAccount(t, env.db, "worker", models.RoleWorker)

	pending := &models.Task{
		Title:      "Unfinished order",
		Status:     models.TaskStatusPending,
		AssignedTo: &worker.ID,
	}
	require.NoError(t, env.db.Create(pending).Error)

	completedAt := time.Now()
	done := &models.Task{
		Title:       "Finished order",
		Status:      models.TaskStatusDone,
		AssignedTo:  &worker.ID,
		CompletedAt: &completedAt,
	}
	require.NoError(t, env.db.Create(done).Error)

	c, w := userTestContext(http.MethodDelete, "/api/workers/2", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(worker.ID, 10)}}

	env.handler.RemoveWorker(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Worker removed successfully", response["message"])

	// The worker and their unfinished tasks are gone
	var removed models.User
	require.Error(t, env.db.First(&removed, worker.ID).Error)
	var gone models.Task
	require.Error(t, env.db.First(&gone, pending.ID).Error)

	// Finished tasks survive unassigned
	var kept models.Task
	require.NoError(t, env.db.First(&kept, done.ID).Error)
	require.Nil(t, kept.AssignedTo)

	// The audit trail recorded the removal
	var audit models.AuditLog
	require.NoError(t, env.db.Where("action = ?", models.AuditActionWorkerRemoved).First(&audit).Error)
	require.Equal(t, worker.Username, audit.OldValue)
}

func TestUserHandler_RemoveWorker_NotWorker(t *testing.T) {
	env := setupUserTestEnv(t)

	admin := createTestAccount(t, env.db, "admin", models.RoleAdmin)
	otherAdmin := createTestAccount(t, env.db, "other-admin", models.RoleAdmin)

	c, w := userTestContext(http.MethodDelete, "/api/workers/2", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(otherAdmin.ID, 10)}}

	env.handler.RemoveWorker(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_GetProfile_WorkerIncludesHistory(t *testing.T) {
	env := setupUserTestEnv(t)

	worker := createTestAccount(t, env.db, "worker", models.RoleWorker)

	entry := &models.CompletedTask{
		TaskID:      7,
		Title:       "Replaced drive belt",
		WorkerID:    &worker.ID,
		CompletedAt: time.Now(),
	}
	require.NoError(t, env.db.Create(entry).Error)

	c, w := userTestContext(http.MethodGet, "/api/profile", nil, worker.ID)

	env.handler.GetProfile(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, worker.Username, response.User.Username)
	require.Len(t, response.CompletedTasks, 1)
	require.Equal(t, entry.Title, response.CompletedTasks[0].Title)
}

func TestUserHandler_GetProfile_AdminHasNoHistory(t *testing.T) {
	env := setupUserTestEnv(t)

	admin := createTestAccount(t, env.db, "admin", models.RoleAdmin)

	c, w := userTestContext(http.MethodGet, "/api/profile", nil, admin.ID)

	env.handler.GetProfile(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, admin.Username, response.User.Username)
	require.Empty(t, response.CompletedTasks)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	env := setupUserTestEnv(t)

	worker := createTestAccount(t, env.db, "worker", models.RoleWorker)

	payload := map[string]string{
		"username": "renamed",
		"email":    "renamed@example.com",
		"phone":    "555-0101",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := userTestContext(http.MethodPut, "/api/profile", body, worker.ID)

	env.handler.UpdateProfile(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "renamed", response.Username)
	require.NotNil(t, response.Email)
	require.Equal(t, "renamed@example.com", *response.Email)

	// The old password still works because none was provided
	var stored models.User
	require.NoError(t, env.db.First(&stored, worker.ID).Error)
	require.Equal(t, "hashed", stored.PasswordHash)
}

func TestUserHandler_UpdateProfile_UsernameTaken(t *testing.T) {
	env := setupUserTestEnv(t)

	worker := createTestAccount(t, env.db, "worker", models.RoleWorker)
	createTestAccount(t, env.db, "taken", models.RoleWorker)

	payload := map[string]string{
		"username": "taken",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := userTestContext(http.MethodPut, "/api/profile", body, worker.ID)

	env.handler.UpdateProfile(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_UpdateProfile_ShortPassword(t *testing.T) {
	env := setupUserTestEnv(t)

	worker := createTestAccount(t, env.db, "worker", models.RoleWorker)

	payload := map[string]string{
		"username": "worker",
		"password": "short",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := userTestContext(http.MethodPut, "/api/profile", body, worker.ID)

	env.handler.UpdateProfile(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
