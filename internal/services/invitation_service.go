package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workhive/workspace-api/internal/constants"
	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvitePermissionDenied = errors.New("only workspace owners and admins can send invitations")
	ErrInviteAlreadySent      = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound     = errors.New("invitation not found or has expired")
	ErrInviteEmailRequired    = errors.New("email is required")
	ErrInviteDeliveryFailed   = errors.New("failed to deliver invitation email")
)

// InvitationService drives the invitation lifecycle: a pending row is created
// by Send, read by Inspect, and consumed exactly once by Accept. Expiry is
// never stored; an expired row simply stops matching the acceptance lookup.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	workspaceRepo  repository.WorkspaceRepository
	guard          *AccessGuard
	tokens         *InviteTokenService
	mailer         Mailer
	appURL         string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	workspaceRepo repository.WorkspaceRepository,
	guard *AccessGuard,
	tokens *InviteTokenService,
	mailer Mailer,
	appURL string,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		workspaceRepo:  workspaceRepo,
		guard:          guard,
		tokens:         tokens,
		mailer:         mailer,
		appURL:         appURL,
	}
}

// SendInvitationInput represents parameters to invite an email address into a
// workspace.
type SendInvitationInput struct {
	WorkspaceID uint64
	Email       string
	Role        models.WorkspaceRole
	ActorID     uint64
}

// SendInvitation creates a pending invitation and dispatches the acceptance
// link. A delivery failure is surfaced to the caller; the persisted row
// remains valid and a later send for the same email reuses the conflict
// check, so the invite can be retried only after it expires or is accepted.
func (s *InvitationService) SendInvitation(input SendInvitationInput) (*models.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrInviteEmailRequired
	}

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
		return nil, ErrInvitePermissionDenied
	}

	workspace, err := s.workspaceRepo.FindByID(input.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if existing, err := s.userRepo.FindByEmail(email); err == nil {
		if _, err := s.workspaceRepo.FindMember(input.WorkspaceID, existing.ID); err == nil {
			return nil, ErrAlreadyWorkspaceMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to verify membership: %w", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	now := time.Now()

	if _, err := s.invitationRepo.FindPending(input.WorkspaceID, email, now); err == nil {
		return nil, ErrInviteAlreadySent
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	token, err := s.tokens.Sign(email, input.WorkspaceID, input.ActorID, role, constants.InvitationTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign invitation token: %w", err)
	}

	invitation := &models.Invitation{
		WorkspaceID: input.WorkspaceID,
		Email:       email,
		Token:       token,
		Role:        role,
		Status:      models.InvitationStatusPending,
		InvitedByID: input.ActorID,
		ExpiresAt:   now.Add(constants.InvitationTTL),
	}

	if err := s.invitationRepo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	inviter, err := s.userRepo.FindByID(input.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find inviter: %w", err)
	}

	mail := InvitationMail{
		To:            email,
		InviterName:   inviter.Name,
		WorkspaceName: workspace.Name,
		AcceptLink:    fmt.Sprintf("%s/invitations/accept?token=%s", s.appURL, token),
	}

	if err := s.mailer.SendInvitation(mail); err != nil {
		return nil, ErrInviteDeliveryFailed
	}

	return invitation, nil
}

// InspectResult describes an invitation to the client rendering the
// acceptance form. Found reports whether a user with the invited email
// already has an account.
type InspectResult struct {
	Found         bool
	Email         string
	WorkspaceName string
	InvitedByName string
}

// InspectInvitation verifies the token and reports whether the invited email
// already belongs to a registered user. A bad or expired token is a hard
// failure, never a soft found=false.
func (s *InvitationService) InspectInvitation(token string) (*InspectResult, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	workspace, err := s.workspaceRepo.FindByID(claims.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	inviter, err := s.userRepo.FindByID(claims.InvitedByID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find inviter: %w", err)
	}

	result := &InspectResult{
		Email:         claims.Email,
		WorkspaceName: workspace.Name,
		InvitedByName: inviter.Name,
	}

	if _, err := s.userRepo.FindByEmail(claims.Email); err == nil {
		result.Found = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	return result, nil
}

// AcceptInvitationInput represents parameters to accept an invitation. Name
// and Password are required only when no account exists for the invited
// email.
type AcceptInvitationInput struct {
	Token    string
	Name     string
	Password string
}

// AcceptInvitation consumes a pending invitation: the signed token and the
// stored row must both still be valid. A brand-new user is created in the
// same transaction that grants the membership and retires the invitation.
func (s *InvitationService) AcceptInvitation(input AcceptInvitationInput) (*models.Invitation, *models.User, error) {
	claims, err := s.tokens.Verify(input.Token)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()

	// Membership is checked before the row lookup so that re-submitting an
	// already consumed token reports the conflict, not a missing invitation.
	user, err := s.userRepo.FindByEmail(claims.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check user: %w", err)
	}
	if user != nil && user.ID != 0 {
		if _, err := s.workspaceRepo.FindMember(claims.WorkspaceID, user.ID); err == nil {
			return nil, nil, ErrAlreadyWorkspaceMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("failed to verify membership: %w", err)
		}
	}

	invitation, err := s.invitationRepo.FindForAccept(input.Token, claims.Email, claims.WorkspaceID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvitationNotFound
		}
		return nil, nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if user == nil || user.ID == 0 {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, nil, ErrNameRequired
		}
		if len(input.Password) < constants.MinPasswordLength {
			return nil, nil, ErrPasswordTooShort
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, ErrFailedToHashPassword
		}

		user = &models.User{
			Name:         name,
			Email:        claims.Email,
			PasswordHash: string(hashedPassword),
		}
	}

	member := &models.WorkspaceMember{
		Role:     claims.Role,
		JoinedAt: now,
	}

	if err := s.invitationRepo.Accept(invitation, user, member, now); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return nil, nil, ErrAlreadyWorkspaceMember
		}
		return nil, nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return invitation, user, nil
}
