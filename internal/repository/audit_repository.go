package repository

import (
	"github.com/ykurohata/workorder-api/internal/database"
	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/utils"
	"gorm.io/gorm"
)

// GormAuditLogRepository is a GORM implementation of AuditLogRepository
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create records a new audit log entry
func (r *GormAuditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// List returns a page of audit log entries, newest first, with the total count
func (r *GormAuditLogRepository) List(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	var total int64
	if err := r.db.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := r.db.Scopes(database.Paginate(params)).
		Order("created_at DESC, id DESC").
		Preload("User").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
