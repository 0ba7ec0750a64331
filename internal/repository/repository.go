package repository

import (
	"time"

	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email address
	FindByEmail(email string) (*models.User, error)
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// CreateWithOwner creates a workspace and its owner membership atomically
	CreateWithOwner(workspace *models.Workspace, owner *models.WorkspaceMember) error

	// FindByID finds a workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// FindByIDWithDetails finds a workspace with members and projects preloaded
	FindByIDWithDetails(id uint64) (*models.Workspace, error)

	// AddMember adds a member to a workspace
	AddMember(member *models.WorkspaceMember) error

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.WorkspaceMember, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.WorkspaceMember, error)

	// ListMembershipsByUserID lists all workspaces a user is a member of
	ListMembershipsByUserID(userID uint64) ([]models.WorkspaceMember, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListByWorkspaceIDs lists projects across the given workspaces
	ListByWorkspaceIDs(workspaceIDs []uint64) ([]models.Project, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceIDs []uint64
	ProjectID    *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Pagination   utils.PaginationParams
}

// TaskRepository defines the interface for task data access. Mutations take
// the activity log entry describing them so the row insert and the log append
// commit or roll back together.
type TaskRepository interface {
	// CreateWithLog creates a task and its creation log entry atomically
	CreateWithLog(task *models.Task, entry *models.ActivityLog) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// UpdateWithLog saves a task and, when entry is non-nil, appends the
	// update log entry in the same transaction
	UpdateWithLog(task *models.Task, entry *models.ActivityLog) error

	// DeleteWithLog deletes a task, its accumulated log entries, and records
	// the deletion entry atomically
	DeleteWithLog(task *models.Task, entry *models.ActivityLog) error
}

// ActivityLogRepository defines the interface for reading the audit trail
type ActivityLogRepository interface {
	// ListByTask lists a task's log entries, newest first
	ListByTask(taskID uint64) ([]models.ActivityLog, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create persists a new pending invitation
	Create(invitation *models.Invitation) error

	// FindPending finds a pending, unexpired invitation for (workspace, email)
	FindPending(workspaceID uint64, email string, now time.Time) (*models.Invitation, error)

	// FindForAccept finds the pending, unexpired invitation row matching the
	// presented token
	FindForAccept(token, email string, workspaceID uint64, now time.Time) (*models.Invitation, error)

	// Accept creates the user (when new), the membership, and marks the
	// invitation accepted within a single transaction
	Accept(invitation *models.Invitation, user *models.User, member *models.WorkspaceMember, now time.Time) error
}
