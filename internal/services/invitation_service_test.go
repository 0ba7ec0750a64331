package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingMailer captures outgoing invitation mail and can simulate
// delivery failures.
type recordingMailer struct {
	sent []InvitationMail
	fail bool
}

func (m *recordingMailer) SendInvitation(mail InvitationMail) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, mail)
	return nil
}

type InvitationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mailer  *recordingMailer
	service *InvitationService

	owner     *models.User
	workspace *models.Workspace
}

func (suite *InvitationServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Project{},
		&models.Task{},
		&models.ActivityLog{},
		&models.Invitation{},
	)
	suite.Require().NoError(err)

	userRepo := repository.NewUserRepository(suite.db)
	workspaceRepo := repository.NewWorkspaceRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	invitationRepo := repository.NewInvitationRepository(suite.db)

	guard := NewAccessGuard(workspaceRepo, projectRepo, taskRepo)
	tokens := NewInviteTokenService("test-secret")
	suite.mailer = &recordingMailer{}

	suite.service = NewInvitationService(
		invitationRepo,
		userRepo,
		workspaceRepo,
		guard,
		tokens,
		suite.mailer,
		"http://localhost:3000",
	)

	suite.owner = suite.createUser("owner@example.com")
	suite.workspace = &models.Workspace{Name: "Acme", CreatedByID: suite.owner.ID}
	suite.Require().NoError(suite.db.Create(suite.workspace).Error)
	suite.addMember(suite.workspace.ID, suite.owner.ID, models.RoleOwner)
}

func (suite *InvitationServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *InvitationServiceTestSuite) createUser(email string) *models.User {
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "hashed"}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *InvitationServiceTestSuite) addMember(workspaceID, userID uint64, role models.WorkspaceRole) {
	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now(),
	}
	suite.Require().NoError(suite.db.Create(member).Error)
}

func (suite *InvitationServiceTestSuite) send(email string) *models.Invitation {
	invitation, err := suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       email,
		ActorID:     suite.owner.ID,
	})
	suite.Require().NoError(err)
	return invitation
}

func (suite *InvitationServiceTestSuite) TestSendInvitation() {
	invitation := suite.send("invitee@example.com")

	suite.Equal(models.InvitationStatusPending, invitation.Status)
	suite.Equal(models.RoleMember, invitation.Role)
	suite.Equal(suite.owner.ID, invitation.InvitedByID)
	suite.NotEmpty(invitation.Token)
	suite.True(invitation.ExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)))

	suite.Require().Len(suite.mailer.sent, 1)
	mail := suite.mailer.sent[0]
	suite.Equal("invitee@example.com", mail.To)
	suite.Equal("Acme", mail.WorkspaceName)
	suite.Contains(mail.AcceptLink, "http://localhost:3000/invitations/accept?token=")
}

func (suite *InvitationServiceTestSuite) TestSendInvitation_MemberCannotInvite() {
	member := suite.createUser("member@example.com")
	suite.addMember(suite.workspace.ID, member.ID, models.RoleMember)

	_, err := suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       "invitee@example.com",
		ActorID:     member.ID,
	})
	suite.Require().ErrorIs(err, ErrInvitePermissionDenied)
}

func (suite *InvitationServiceTestSuite) TestSendInvitation_ExistingMemberConflict() {
	member := suite.createUser("member@example.com")
	suite.addMember(suite.workspace.ID, member.ID, models.RoleMember)

	_, err := suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       "member@example.com",
		ActorID:     suite.owner.ID,
	})
	suite.Require().ErrorIs(err, ErrAlreadyWorkspaceMember)
}

func (suite *InvitationServiceTestSuite) TestSendInvitation_DuplicatePendingConflict() {
	suite.send("invitee@example.com")

	_, err := suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       "invitee@example.com",
		ActorID:     suite.owner.ID,
	})
	suite.Require().ErrorIs(err, ErrInviteAlreadySent)
}

func (suite *InvitationServiceTestSuite) TestSendInvitation_DeliveryFailureKeepsRow() {
	suite.mailer.fail = true

	_, err := suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       "invitee@example.com",
		ActorID:     suite.owner.ID,
	})
	suite.Require().ErrorIs(err, ErrInviteDeliveryFailed)

	var count int64
	suite.db.Model(&models.Invitation{}).
		Where("email = ? AND status = ?", "invitee@example.com", models.InvitationStatusPending).
		Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *InvitationServiceTestSuite) TestInspectInvitation() {
	invitation := suite.send("invitee@example.com")

	result, err := suite.service.InspectInvitation(invitation.Token)
	suite.Require().NoError(err)
	suite.False(result.Found)
	suite.Equal("invitee@example.com", result.Email)
	suite.Equal("Acme", result.WorkspaceName)
	suite.Equal(suite.owner.Name, result.InvitedByName)
}

func (suite *InvitationServiceTestSuite) TestInspectInvitation_ExistingUser() {
	suite.createUser("known@example.com")
	invitation := suite.send("known@example.com")

	result, err := suite.service.InspectInvitation(invitation.Token)
	suite.Require().NoError(err)
	suite.True(result.Found)
}

func (suite *InvitationServiceTestSuite) TestInspectInvitation_BadToken() {
	_, err := suite.service.InspectInvitation("garbage")
	suite.Require().ErrorIs(err, ErrInvalidInviteToken)
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_NewUser() {
	invitation := suite.send("invitee@example.com")

	accepted, user, err := suite.service.AcceptInvitation(AcceptInvitationInput{
		Token:    invitation.Token,
		Name:     "New Invitee",
		Password: "supersecret",
	})
	suite.Require().NoError(err)
	suite.Equal(suite.workspace.ID, accepted.WorkspaceID)
	suite.Equal("New Invitee", user.Name)
	suite.Equal("invitee@example.com", user.Email)
	suite.NotZero(user.ID)

	var member models.WorkspaceMember
	err = suite.db.Where("workspace_id = ? AND user_id = ?", suite.workspace.ID, user.ID).First(&member).Error
	suite.Require().NoError(err)
	suite.Equal(models.RoleMember, member.Role)

	var stored models.Invitation
	suite.Require().NoError(suite.db.First(&stored, invitation.ID).Error)
	suite.Equal(models.InvitationStatusAccepted, stored.Status)
	suite.NotNil(stored.AcceptedAt)
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_ExistingUser() {
	existing := suite.createUser("existing@example.com")
	invitation := suite.send("existing@example.com")

	_, user, err := suite.service.AcceptInvitation(AcceptInvitationInput{
		Token: invitation.Token,
	})
	suite.Require().NoError(err)
	suite.Equal(existing.ID, user.ID)

	var count int64
	suite.db.Model(&models.User{}).Where("email = ?", "existing@example.com").Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_SecondAcceptConflict() {
	invitation := suite.send("invitee@example.com")

	_, _, err := suite.service.AcceptInvitation(AcceptInvitationInput{
		Token:    invitation.Token,
		Name:     "New Invitee",
		Password: "supersecret",
	})
	suite.Require().NoError(err)

	_, _, err = suite.service.AcceptInvitation(AcceptInvitationInput{
		Token: invitation.Token,
	})
	suite.Require().ErrorIs(err, ErrAlreadyWorkspaceMember)

	var memberCount int64
	suite.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ?", suite.workspace.ID).
		Count(&memberCount)
	suite.Equal(int64(2), memberCount) // owner plus invitee, no duplicate row

	var stored models.Invitation
	suite.Require().NoError(suite.db.First(&stored, invitation.ID).Error)
	suite.Equal(models.InvitationStatusAccepted, stored.Status)
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_Expired() {
	invitation := suite.send("invitee@example.com")

	err := suite.db.Model(&models.Invitation{}).
		Where("id = ?", invitation.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error
	suite.Require().NoError(err)

	_, _, err = suite.service.AcceptInvitation(AcceptInvitationInput{
		Token:    invitation.Token,
		Name:     "New Invitee",
		Password: "supersecret",
	})
	suite.Require().ErrorIs(err, ErrInvitationNotFound)
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_NewUserValidation() {
	invitation := suite.send("invitee@example.com")

	_, _, err := suite.service.AcceptInvitation(AcceptInvitationInput{
		Token:    invitation.Token,
		Password: "supersecret",
	})
	suite.Require().ErrorIs(err, ErrNameRequired)

	_, _, err = suite.service.AcceptInvitation(AcceptInvitationInput{
		Token:    invitation.Token,
		Name:     "New Invitee",
		Password: "short",
	})
	suite.Require().ErrorIs(err, ErrPasswordTooShort)
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_AlreadyMember() {
	existing := suite.createUser("existing@example.com")
	invitation := suite.send("existing@example.com")
	suite.addMember(suite.workspace.ID, existing.ID, models.RoleMember)

	_, _, err := suite.service.AcceptInvitation(AcceptInvitationInput{
		Token: invitation.Token,
	})
	suite.Require().ErrorIs(err, ErrAlreadyWorkspaceMember)
}

func (suite *InvitationServiceTestSuite) TestSendAfterAcceptanceSucceeds() {
	invitation := suite.send("invitee@example.com")

	_, user, err := suite.service.AcceptInvitation(AcceptInvitationInput{
		Token:    invitation.Token,
		Name:     "New Invitee",
		Password: "supersecret",
	})
	suite.Require().NoError(err)

	// Membership now exists, so a re-invite conflicts on membership rather
	// than on a pending row.
	_, err = suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       "invitee@example.com",
		ActorID:     suite.owner.ID,
	})
	suite.Require().ErrorIs(err, ErrAlreadyWorkspaceMember)

	suite.Require().NoError(suite.db.Where("workspace_id = ? AND user_id = ?", suite.workspace.ID, user.ID).
		Delete(&models.WorkspaceMember{}).Error)

	// With the membership gone and the old row accepted, a fresh invite goes
	// through.
	_, err = suite.service.SendInvitation(SendInvitationInput{
		WorkspaceID: suite.workspace.ID,
		Email:       "invitee@example.com",
		ActorID:     suite.owner.ID,
	})
	suite.Require().NoError(err)
}

func TestInvitationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceTestSuite))
}
