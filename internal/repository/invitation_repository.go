package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/workhive/workspace-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateInvitedUser is returned when creating the invited user fails inside the acceptance transaction.
	ErrCreateInvitedUser = errors.New("invitation repository: create user failed")
	// ErrCreateMembership is returned when creating the membership fails inside the acceptance transaction.
	ErrCreateMembership = errors.New("invitation repository: create membership failed")
	// ErrDuplicateMembership is returned when the membership insert hits the
	// (workspace_id, user_id) primary key, i.e. a concurrent acceptance won.
	ErrDuplicateMembership = errors.New("invitation repository: membership already exists")
	// ErrMarkAccepted is returned when transitioning the invitation to accepted fails.
	ErrMarkAccepted = errors.New("invitation repository: mark accepted failed")
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create persists a new pending invitation
func (r *GormInvitationRepository) Create(invitation *models.Invitation) error {
	return r.db.Create(invitation).Error
}

// FindPending finds a pending, unexpired invitation for (workspace, email)
func (r *GormInvitationRepository) FindPending(workspaceID uint64, email string, now time.Time) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.
		Where("workspace_id = ? AND email = ? AND status = ? AND expires_at > ?",
			workspaceID, email, models.InvitationStatusPending, now).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindForAccept finds the pending, unexpired invitation row matching the
// presented token. An accepted or expired row is indistinguishable from a
// missing one here; callers surface both as not found.
func (r *GormInvitationRepository) FindForAccept(token, email string, workspaceID uint64, now time.Time) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.
		Preload("Workspace").
		Preload("InvitedBy").
		Where("token = ? AND email = ? AND workspace_id = ? AND status = ? AND expires_at > ?",
			token, email, workspaceID, models.InvitationStatusPending, now).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Accept creates the user (when new), the membership, and marks the
// invitation accepted within a single transaction.
func (r *GormInvitationRepository) Accept(invitation *models.Invitation, user *models.User, member *models.WorkspaceMember, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if user.ID == 0 {
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateInvitedUser, err)
			}
		}

		member.WorkspaceID = invitation.WorkspaceID
		member.UserID = user.ID

		if err := tx.Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMembership
			}
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		invitation.Status = models.InvitationStatusAccepted
		invitation.AcceptedAt = &now

		if err := tx.Model(&models.Invitation{}).
			Where("id = ?", invitation.ID).
			Updates(map[string]any{
				"status":      models.InvitationStatusAccepted,
				"accepted_at": now,
			}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrMarkAccepted, err)
		}

		return nil
	})
}
