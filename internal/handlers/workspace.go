package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workhive/workspace-api/internal/dto"
	apierrors "github.com/workhive/workspace-api/internal/errors"
	"github.com/workhive/workspace-api/internal/middleware"
	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/services"
)

// WorkspaceHandler coordinates workspace and invitation HTTP handlers.
type WorkspaceHandler struct {
	workspaceService  *services.WorkspaceService
	invitationService *services.InvitationService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService, invitationService *services.InvitationService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService:  workspaceService,
		invitationService: invitationService,
	}
}

// CreateWorkspace creates a new workspace owned by the caller.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateWorkspaceRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:      req.Name,
		CreatorID: userID,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace))
}

// ListWorkspaces returns the caller's workspaces with their role in each.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.workspaceService.ListWorkspacesForUser(userID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	workspaces := make([]dto.WorkspaceWithRoleDTO, len(memberships))
	for i, m := range memberships {
		workspaces[i] = dto.ToWorkspaceWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": workspaces,
	})
}

// GetWorkspace returns workspace details with members and projects.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	workspaceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	workspace, role, err := h.workspaceService.GetWorkspace(workspaceID, userID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDetailDTO(*workspace, role))
}

// ListMembers returns all members of a workspace.
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	workspaceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	members, err := h.workspaceService.ListMembers(workspaceID, userID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	memberDTOs := make([]dto.WorkspaceMemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToWorkspaceMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": memberDTOs,
	})
}

// AddMember adds an existing user to a workspace.
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AddMemberRequest struct {
		WorkspaceID uint64               `json:"workspace_id" binding:"required"`
		UserID      uint64               `json:"user_id" binding:"required"`
		Role        models.WorkspaceRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.workspaceService.AddMember(services.AddMemberInput{
		WorkspaceID: req.WorkspaceID,
		ActorID:     userID,
		UserID:      req.UserID,
		Role:        req.Role,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"workspace_id": member.WorkspaceID,
		"user_id":      member.UserID,
		"role":         member.Role,
		"joined_at":    member.JoinedAt,
	})
}

// SendInvitation invites an email address to join a workspace.
func (h *WorkspaceHandler) SendInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type SendInvitationRequest struct {
		WorkspaceID uint64               `json:"workspace_id" binding:"required"`
		Email       string               `json:"email" binding:"required,email"`
		Role        models.WorkspaceRole `json:"role"`
	}

	var req SendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invitation, err := h.invitationService.SendInvitation(services.SendInvitationInput{
		WorkspaceID: req.WorkspaceID,
		Email:       req.Email,
		Role:        req.Role,
		ActorID:     userID,
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

// AcceptInvitation consumes an invitation token, creating the account when
// the invited email is new.
func (h *WorkspaceHandler) AcceptInvitation(c *gin.Context) {
	type AcceptInvitationRequest struct {
		Token    string `json:"token" binding:"required"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invitation, user, err := h.invitationService.AcceptInvitation(services.AcceptInvitationInput{
		Token:    req.Token,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace_id": invitation.WorkspaceID,
		"user":         dto.ToUserDTO(*user),
	})
}

func respondWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidWorkspaceName),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotWorkspaceMember):
		// 404 rather than 403 to avoid leaking workspace existence
		apierrors.NotFound(c, "Workspace not found")
	case errors.Is(err, services.ErrMemberPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyWorkspaceMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrFailedToCreateWorkspace),
		errors.Is(err, services.ErrFailedToAddOwner):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInviteEmailRequired),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidInviteToken):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrInvitationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvitePermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyWorkspaceMember),
		errors.Is(err, services.ErrInviteAlreadySent):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInviteDeliveryFailed):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
