package dto

import (
	"time"

	"github.com/workhive/workspace-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WorkspaceID uint64    `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectDetailDTO represents a project with its tasks
type ProjectDetailDTO struct {
	ProjectDTO
	Tasks []TaskListItemDTO `json:"tasks"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		WorkspaceID: project.WorkspaceID,
		CreatedAt:   project.CreatedAt,
	}
}

// ToProjectDetailDTO converts a project with tasks to a detailed DTO
func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	tasks := make([]TaskListItemDTO, len(project.Tasks))
	for i, task := range project.Tasks {
		tasks[i] = ToTaskListItemDTO(task)
	}

	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Tasks:      tasks,
	}
}
