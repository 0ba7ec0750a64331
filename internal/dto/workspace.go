package dto

import (
	"time"

	"github.com/workhive/workspace-api/internal/models"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	CreatedByID uint64    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkspaceWithRoleDTO represents a workspace with the caller's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role models.WorkspaceRole `json:"role"`
}

// WorkspaceMemberDTO represents a member in a workspace
type WorkspaceMemberDTO struct {
	User     UserDTO              `json:"user"`
	Role     models.WorkspaceRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
}

// WorkspaceDetailDTO represents detailed workspace information
type WorkspaceDetailDTO struct {
	WorkspaceDTO
	Members  []WorkspaceMemberDTO `json:"members"`
	Projects []ProjectDTO         `json:"projects"`
	YourRole models.WorkspaceRole `json:"your_role"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(workspace models.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:          workspace.ID,
		Name:        workspace.Name,
		CreatedByID: workspace.CreatedByID,
		CreatedAt:   workspace.CreatedAt,
	}
}

// ToWorkspaceWithRoleDTO converts a membership to a workspace DTO with role
func ToWorkspaceWithRoleDTO(member models.WorkspaceMember) WorkspaceWithRoleDTO {
	return WorkspaceWithRoleDTO{
		WorkspaceDTO: ToWorkspaceDTO(member.Workspace),
		Role:         member.Role,
	}
}

// ToWorkspaceMemberDTO converts a member to DTO
func ToWorkspaceMemberDTO(member models.WorkspaceMember) WorkspaceMemberDTO {
	return WorkspaceMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToWorkspaceDetailDTO converts a workspace with members and projects to a
// detailed DTO
func ToWorkspaceDetailDTO(workspace models.Workspace, yourRole models.WorkspaceRole) WorkspaceDetailDTO {
	memberDTOs := make([]WorkspaceMemberDTO, len(workspace.Members))
	for i, member := range workspace.Members {
		memberDTOs[i] = ToWorkspaceMemberDTO(member)
	}

	projectDTOs := make([]ProjectDTO, len(workspace.Projects))
	for i, project := range workspace.Projects {
		projectDTOs[i] = ToProjectDTO(project)
	}

	return WorkspaceDetailDTO{
		WorkspaceDTO: ToWorkspaceDTO(workspace),
		Members:      memberDTOs,
		Projects:     projectDTOs,
		YourRole:     yourRole,
	}
}
