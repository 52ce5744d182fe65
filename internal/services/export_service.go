package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ykurohata/workorder-api/internal/repository"
)

var ErrNothingToExport = errors.New("no tasks to export")

// ExportService renders worker-assigned tasks as a CSV download
type ExportService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(taskRepo repository.TaskRepository) *ExportService {
	return &ExportService{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// WithClock overrides the timestamp source used for the filename
func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

var exportHeader = []string{
	"S.No", "Title", "Description", "Machine ID", "Area",
	"Deadline", "Status", "Assigned Worker", "Worker Email", "Worker Phone",
}

// BuildCSV renders the export and returns its bytes together with the
// date-stamped download filename. Serial numbers restart at 1 on every
// export.
func (s *ExportService) BuildCSV() ([]byte, string, error) {
	rows, err := s.taskRepo.ListForExport()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load export rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, "", ErrNothingToExport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, "", fmt.Errorf("failed to write export header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			strconv.Itoa(i + 1),
			row.Title,
			row.Description,
			stringOrEmpty(row.MachineID),
			stringOrEmpty(row.Area),
			formatDeadline(row.Deadline),
			string(row.Status),
			row.WorkerName,
			stringOrEmpty(row.WorkerEmail),
			stringOrEmpty(row.WorkerPhone),
		}
		if err := w.Write(record); err != nil {
			return nil, "", fmt.Errorf("failed to write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush export: %w", err)
	}

	filename := fmt.Sprintf("all_tasks_%s.csv", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// stringOrEmpty renders a nullable column
func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// formatDeadline renders a nullable deadline
func formatDeadline(deadline *time.Time) string {
	if deadline == nil {
		return ""
	}
	return deadline.Format("2006-01-02 15:04:05")
}
