package models

import (
	"time"

	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
)

// Invitation is a pending or accepted offer to join a workspace. Expiry is a
// derived condition (now > ExpiresAt), not a stored status; acceptance is the
// only transition out of pending.
type Invitation struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	WorkspaceID uint64           `gorm:"not null;index:idx_invitations_workspace_email" json:"workspace_id"`
	Email       string           `gorm:"type:varchar(255);not null;index:idx_invitations_workspace_email" json:"email"`
	Token       string           `gorm:"type:text;not null" json:"-"`
	Role        WorkspaceRole    `gorm:"type:varchar(20);not null" json:"role"`
	Status      InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	InvitedByID uint64           `gorm:"not null" json:"invited_by_id"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time       `json:"accepted_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	InvitedBy User      `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}
