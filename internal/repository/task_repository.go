package repository

import (
	"github.com/workhive/workspace-api/internal/database"
	"github.com/workhive/workspace-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithLog creates a task and its creation log entry atomically
func (r *GormTaskRepository) CreateWithLog(task *models.Task, entry *models.ActivityLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		entry.TaskID = task.ID
		return tx.Create(entry).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	if len(filter.WorkspaceIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.workspace_id IN ?", filter.WorkspaceIDs).
		Where("projects.deleted_at IS NULL")

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	if err := query.Order("tasks.created_at DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Assignee").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateWithLog saves a task and appends the update log entry in one transaction.
// A nil entry means no tracked field changed; the save still happens alone.
func (r *GormTaskRepository) UpdateWithLog(task *models.Task, entry *models.ActivityLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if entry == nil {
			return nil
		}

		entry.TaskID = task.ID
		return tx.Create(entry).Error
	})
}

// DeleteWithLog deletes a task together with its accumulated log entries and
// records the deletion entry, all in one transaction.
func (r *GormTaskRepository) DeleteWithLog(task *models.Task, entry *models.ActivityLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(task).Error; err != nil {
			return err
		}

		entry.TaskID = task.ID
		return tx.Create(entry).Error
	})
}
