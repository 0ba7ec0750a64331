package dto

import (
	"time"

	"github.com/workhive/workspace-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// InvitationInspectDTO describes an invitation to the acceptance form.
type InvitationInspectDTO struct {
	Found         bool   `json:"found"`
	Email         string `json:"email"`
	WorkspaceName string `json:"workspace_name"`
	InvitedBy     string `json:"invited_by"`
}

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	ID          uint64                  `json:"id"`
	WorkspaceID uint64                  `json:"workspace_id"`
	Email       string                  `json:"email"`
	Role        models.WorkspaceRole    `json:"role"`
	Status      models.InvitationStatus `json:"status"`
	ExpiresAt   time.Time               `json:"expires_at"`
	AcceptedAt  *time.Time              `json:"accepted_at,omitempty"`
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(invitation models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:          invitation.ID,
		WorkspaceID: invitation.WorkspaceID,
		Email:       invitation.Email,
		Role:        invitation.Role,
		Status:      invitation.Status,
		ExpiresAt:   invitation.ExpiresAt,
		AcceptedAt:  invitation.AcceptedAt,
	}
}
