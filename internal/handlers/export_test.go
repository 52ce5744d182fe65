package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/repository"
	"github.com/ykurohata/workorder-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Every export test stamps its filename against this instant.
var exportNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupExportTestEnv(t *testing.T) (*gorm.DB, *ExportHandler) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Task{})
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	exportService := services.NewExportService(taskRepo).
		WithClock(func() time.Time { return exportNow })
	handler := NewExportHandler(exportService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, handler
}

func exportTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks/export", nil)
	return c, w
}

func TestExportHandler_ExportTasks(t *testing.T) {
	db, handler := setupExportTestEnv(t)

	email := "worker@example.com"
	phone := "555-0101"
	worker := &models.User{
		Username:     "worker",
		PasswordHash: "hashed",
		Role:         models.RoleWorker,
		Email:        &email,
		Phone:        &phone,
	}
	require.NoError(t, db.Create(worker).Error)

	deadline := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	machine := "HP-204"
	area := "Press Shop"
	require.NoError(t, db.Create(&models.Task{
		Title:       "Replace hydraulic filter",
		Description: "Filter clogged",
		MachineID:   &machine,
		Area:        &area,
		Deadline:    &deadline,
		Status:      models.TaskStatusPending,
		AssignedTo:  &worker.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Task{
		Title:      "No deadline order",
		Status:     models.TaskStatusInProgress,
		AssignedTo: &worker.ID,
	}).Error)
	// Unassigned tasks never appear in the export
	require.NoError(t, db.Create(&models.Task{
		Title:  "Unassigned order",
		Status: models.TaskStatusPending,
	}).Error)

	c, w := exportTestContext()

	handler.ExportTasks(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="all_tasks_2026-03-10.csv"`, w.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, []string{
		"S.No", "Title", "Description", "Machine ID", "Area",
		"Deadline", "Status", "Assigned Worker", "Worker Email", "Worker Phone",
	}, records[0])

	// Tasks with a deadline sort before tasks without one
	require.Equal(t, []string{
		"1", "Replace hydraulic filter", "Filter clogged", "HP-204", "Press Shop",
		"2026-03-12 08:00:00", "Pending", "worker", "worker@example.com", "555-0101",
	}, records[1])
	require.Equal(t, "2", records[2][0])
	require.Equal(t, "No deadline order", records[2][1])
	require.Equal(t, "", records[2][5])
}

func TestExportHandler_ExportTasks_Empty(t *testing.T) {
	_, handler := setupExportTestEnv(t)

	c, w := exportTestContext()

	handler.ExportTasks(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
