package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/ykurohata/workorder-api/internal/errors"
	"github.com/ykurohata/workorder-api/internal/services"
)

// ExportHandler serves the task export download.
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// ExportTasks sends the worker-assigned tasks as a CSV attachment.
func (h *ExportHandler) ExportTasks(c *gin.Context) {
	data, filename, err := h.exportService.BuildCSV()
	if err != nil {
		if errors.Is(err, services.ErrNothingToExport) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to export tasks")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
