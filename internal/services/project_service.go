package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
)

var ErrInvalidProjectName = errors.New("project name cannot be empty")

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	guard         *AccessGuard
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, workspaceRepo repository.WorkspaceRepository, guard *AccessGuard) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		guard:         guard,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	WorkspaceID uint64
	CreatorID   uint64
}

// CreateProject creates a project inside a workspace the creator belongs to.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	decision, err := s.guard.Authorize(input.CreatorID, WorkspaceRef(input.WorkspaceID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		WorkspaceID: input.WorkspaceID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project with its workspace and tasks, gated on the
// caller's membership in the enclosing workspace.
func (s *ProjectService) GetProject(projectID, userID uint64) (*models.Project, error) {
	decision, err := s.guard.Authorize(userID, ProjectRef(projectID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	project, err := s.projectRepo.FindByID(projectID, "Workspace", "Tasks", "Tasks.Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return project, nil
}

// ListProjectsForUser returns projects across the user's workspaces,
// optionally narrowed to one workspace.
func (s *ProjectService) ListProjectsForUser(userID uint64, workspaceID *uint64) ([]models.Project, error) {
	workspaceIDs, err := s.accessibleWorkspaceIDs(userID, workspaceID)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListByWorkspaceIDs(workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// accessibleWorkspaceIDs returns the workspace IDs the user can read.
func (s *ProjectService) accessibleWorkspaceIDs(userID uint64, workspaceID *uint64) ([]uint64, error) {
	if workspaceID != nil {
		decision, err := s.guard.Authorize(userID, WorkspaceRef(*workspaceID))
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, ErrNotWorkspaceMember
		}
		return []uint64{*workspaceID}, nil
	}

	memberships, err := s.workspaceRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workspace memberships: %w", err)
	}

	workspaceIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		workspaceIDs = append(workspaceIDs, m.WorkspaceID)
	}

	return workspaceIDs, nil
}
