package dto

import (
	"time"

	"github.com/workhive/workspace-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Status       models.TaskStatus    `json:"status"`
	Priority     models.TaskPriority  `json:"priority"`
	DueDate      *time.Time           `json:"due_date"`
	AssignedToID *uint64              `json:"assigned_to_id"`
	ProjectID    uint64               `json:"project_id"`
	CreatedByID  uint64               `json:"created_by_id"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Assignee     *UserDTO             `json:"assignee,omitempty"`
	Project      *ProjectDTO          `json:"project,omitempty"`
	ActivityLogs []ActivityLogDTO     `json:"activity_logs,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	DueDate      *time.Time          `json:"due_date"`
	AssignedToID *uint64             `json:"assigned_to_id"`
	ProjectID    uint64              `json:"project_id"`
	Assignee     *UserDTO            `json:"assignee,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// ActivityLogDTO represents an activity log entry in API responses
type ActivityLogDTO struct {
	ID        uint64                 `json:"id"`
	TaskID    uint64                 `json:"task_id"`
	Action    models.ActivityAction  `json:"action"`
	Details   models.ActivityDetails `json:"details"`
	User      *UserDTO               `json:"user,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		AssignedToID: task.AssignedToID,
		ProjectID:    task.ProjectID,
		CreatedByID:  task.CreatedByID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	// Include project if preloaded
	if task.Project.ID != 0 {
		project := ToProjectDTO(task.Project)
		dto.Project = &project
	}

	// Include activity trail if preloaded
	if len(task.ActivityLogs) > 0 {
		dto.ActivityLogs = make([]ActivityLogDTO, len(task.ActivityLogs))
		for i, entry := range task.ActivityLogs {
			dto.ActivityLogs[i] = ToActivityLogDTO(entry)
		}
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	dto := TaskListItemDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		AssignedToID: task.AssignedToID,
		ProjectID:    task.ProjectID,
		CreatedAt:    task.CreatedAt,
	}

	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToActivityLogDTO converts an ActivityLog model to ActivityLogDTO
func ToActivityLogDTO(entry models.ActivityLog) ActivityLogDTO {
	dto := ActivityLogDTO{
		ID:        entry.ID,
		TaskID:    entry.TaskID,
		Action:    entry.Action,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}

	if entry.User.ID != 0 {
		user := ToUserDTO(entry.User)
		dto.User = &user
	}

	return dto
}
