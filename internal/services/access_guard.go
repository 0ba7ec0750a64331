package services

import (
	"errors"
	"fmt"

	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
)

// ResourceRef identifies the target of an authorization check. Exactly one
// field is set; projects and tasks are resolved to their enclosing workspace.
type ResourceRef struct {
	WorkspaceID uint64
	ProjectID   uint64
	TaskID      uint64
}

// WorkspaceRef refers to a workspace directly.
func WorkspaceRef(id uint64) ResourceRef { return ResourceRef{WorkspaceID: id} }

// ProjectRef refers to a project; its workspace is resolved during the check.
func ProjectRef(id uint64) ResourceRef { return ResourceRef{ProjectID: id} }

// TaskRef refers to a task; its workspace is resolved through the project.
func TaskRef(id uint64) ResourceRef { return ResourceRef{TaskID: id} }

// Decision is the outcome of an authorization check. A false Allowed with a
// non-empty Role means the membership exists but the role is insufficient.
type Decision struct {
	Allowed     bool
	Role        models.WorkspaceRole
	WorkspaceID uint64
}

// AccessGuard answers whether a user may act on a workspace-scoped resource.
// It is read-only: a missing resource is reported as an error, a missing or
// insufficient membership as a denied Decision.
type AccessGuard struct {
	workspaceRepo repository.WorkspaceRepository
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository
}

// NewAccessGuard creates a new AccessGuard.
func NewAccessGuard(workspaceRepo repository.WorkspaceRepository, projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *AccessGuard {
	return &AccessGuard{
		workspaceRepo: workspaceRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
	}
}

// Authorize resolves the workspace behind ref, looks up the caller's
// membership, and gates it against required roles when any are given.
func (g *AccessGuard) Authorize(userID uint64, ref ResourceRef, required ...models.WorkspaceRole) (Decision, error) {
	workspaceID, err := g.resolveWorkspaceID(ref)
	if err != nil {
		return Decision{}, err
	}

	member, err := g.workspaceRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{WorkspaceID: workspaceID}, nil
		}
		return Decision{}, fmt.Errorf("failed to look up membership: %w", err)
	}

	decision := Decision{
		Role:        member.Role,
		WorkspaceID: workspaceID,
	}

	if len(required) > 0 {
		for _, role := range required {
			if member.Role == role {
				decision.Allowed = true
				break
			}
		}
		return decision, nil
	}

	decision.Allowed = true
	return decision, nil
}

func (g *AccessGuard) resolveWorkspaceID(ref ResourceRef) (uint64, error) {
	switch {
	case ref.TaskID != 0:
		task, err := g.taskRepo.FindByID(ref.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrTaskNotFound
			}
			return 0, fmt.Errorf("failed to find task: %w", err)
		}
		return g.resolveWorkspaceID(ProjectRef(task.ProjectID))

	case ref.ProjectID != 0:
		project, err := g.projectRepo.FindByID(ref.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrProjectNotFound
			}
			return 0, fmt.Errorf("failed to find project: %w", err)
		}
		return project.WorkspaceID, nil

	default:
		if _, err := g.workspaceRepo.FindByID(ref.WorkspaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrWorkspaceNotFound
			}
			return 0, fmt.Errorf("failed to find workspace: %w", err)
		}
		return ref.WorkspaceID, nil
	}
}
