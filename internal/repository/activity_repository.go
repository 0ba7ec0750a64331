package repository

import (
	"github.com/workhive/workspace-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityLogRepository is a GORM implementation of ActivityLogRepository
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// ListByTask lists a task's log entries, newest first
func (r *GormActivityLogRepository) ListByTask(taskID uint64) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	if err := r.db.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
