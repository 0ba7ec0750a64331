package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidWorkspaceName    = errors.New("workspace name cannot be empty")
	ErrInvalidRole             = errors.New("invalid workspace role")
	ErrNotWorkspaceMember      = errors.New("user is not a member of the workspace")
	ErrMemberPermissionDenied  = errors.New("only workspace owners and admins can manage members")
	ErrAlreadyWorkspaceMember  = errors.New("user is already a member of this workspace")
	ErrFailedToCreateWorkspace = errors.New("failed to create workspace")
	ErrFailedToAddOwner        = errors.New("failed to add creator to workspace")
)

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	guard         *AccessGuard
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, userRepo repository.UserRepository, guard *AccessGuard) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		guard:         guard,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name      string
	CreatorID uint64
}

// CreateWorkspace creates a workspace with its creator as owner.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidWorkspaceName
	}

	workspace := &models.Workspace{
		Name:        input.Name,
		CreatedByID: input.CreatorID,
	}

	owner := &models.WorkspaceMember{
		UserID:   input.CreatorID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.workspaceRepo.CreateWithOwner(workspace, owner); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateWorkspace):
			return nil, ErrFailedToCreateWorkspace
		case errors.Is(err, repository.ErrCreateOwnerMember):
			return nil, ErrFailedToAddOwner
		default:
			return nil, fmt.Errorf("failed to complete workspace creation: %w", err)
		}
	}

	return workspace, nil
}

// ListWorkspacesForUser returns the user's workspace memberships.
func (s *WorkspaceService) ListWorkspacesForUser(userID uint64) ([]models.WorkspaceMember, error) {
	memberships, err := s.workspaceRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetWorkspace returns a workspace with members and projects, gated on the
// caller's membership.
func (s *WorkspaceService) GetWorkspace(workspaceID, userID uint64) (*models.Workspace, models.WorkspaceRole, error) {
	decision, err := s.guard.Authorize(userID, WorkspaceRef(workspaceID))
	if err != nil {
		return nil, "", err
	}
	if !decision.Allowed {
		return nil, "", ErrNotWorkspaceMember
	}

	workspace, err := s.workspaceRepo.FindByIDWithDetails(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWorkspaceNotFound
		}
		return nil, "", fmt.Errorf("failed to find workspace: %w", err)
	}

	return workspace, decision.Role, nil
}

// ListMembers returns all members of a workspace, gated on the caller's
// membership.
func (s *WorkspaceService) ListMembers(workspaceID, userID uint64) ([]models.WorkspaceMember, error) {
	decision, err := s.guard.Authorize(userID, WorkspaceRef(workspaceID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return members, nil
}

// AddMemberInput represents parameters to add an existing user to a workspace.
type AddMemberInput struct {
	WorkspaceID uint64
	ActorID     uint64
	UserID      uint64
	Role        models.WorkspaceRole
}

// AddMember adds an existing user to a workspace. The actor must be an owner
// or admin.
func (s *WorkspaceService) AddMember(input AddMemberInput) (*models.WorkspaceMember, error) {
	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if !validWorkspaceRole(role) {
		return nil, ErrInvalidRole
	}

	decision, err := s.guard.Authorize(input.ActorID, WorkspaceRef(input.WorkspaceID), models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrMemberPermissionDenied
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.workspaceRepo.FindMember(input.WorkspaceID, input.UserID); err == nil {
		return nil, ErrAlreadyWorkspaceMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.WorkspaceMember{
		WorkspaceID: input.WorkspaceID,
		UserID:      input.UserID,
		Role:        role,
		JoinedAt:    time.Now(),
	}

	if err := s.workspaceRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyWorkspaceMember
		}
		return nil, fmt.Errorf("failed to add member to workspace: %w", err)
	}

	return member, nil
}

func validWorkspaceRole(role models.WorkspaceRole) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleMember, models.RoleViewer:
		return true
	}
	return false
}
