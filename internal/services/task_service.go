package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
	"github.com/workhive/workspace-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrInvalidTaskPriority  = errors.New("invalid task priority")
	ErrAssigneeNotFound     = errors.New("assignee does not exist")
	ErrTaskPermissionDenied = errors.New("only workspace owners and admins can delete tasks")
)

// TaskService handles task business logic. Every mutation routes through the
// activity recorder so the audit trail commits with the change.
type TaskService struct {
	taskRepo      repository.TaskRepository
	activityRepo  repository.ActivityLogRepository
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	guard         *AccessGuard
	recorder      *ActivityRecorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskRepo repository.TaskRepository,
	activityRepo repository.ActivityLogRepository,
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	guard *AccessGuard,
	recorder *ActivityRecorder,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		activityRepo:  activityRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		guard:         guard,
		recorder:      recorder,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	WorkspaceID  *uint64
	ProjectID    *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Pagination   utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	DueDate      *time.Time
	AssignedToID *uint64
	ProjectID    uint64
	CreatorID    uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched; the Clear flags reset their optional counterparts.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssignedToID  *uint64
	ClearAssignee bool
}

// ListTasks returns tasks across the user's workspaces with filters applied.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	var workspaceIDs []uint64

	if input.ProjectID != nil {
		decision, err := s.guard.Authorize(input.UserID, ProjectRef(*input.ProjectID))
		if err != nil {
			return nil, 0, err
		}
		if !decision.Allowed {
			return nil, 0, ErrNotWorkspaceMember
		}
		workspaceIDs = []uint64{decision.WorkspaceID}
	} else if input.WorkspaceID != nil {
		decision, err := s.guard.Authorize(input.UserID, WorkspaceRef(*input.WorkspaceID))
		if err != nil {
			return nil, 0, err
		}
		if !decision.Allowed {
			return nil, 0, ErrNotWorkspaceMember
		}
		workspaceIDs = []uint64{*input.WorkspaceID}
	} else {
		memberships, err := s.workspaceRepo.ListMembershipsByUserID(input.UserID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch workspace memberships: %w", err)
		}
		for _, m := range memberships {
			workspaceIDs = append(workspaceIDs, m.WorkspaceID)
		}
	}

	if len(workspaceIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	filter := repository.TaskFilter{
		WorkspaceIDs: workspaceIDs,
		ProjectID:    input.ProjectID,
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedToID: input.AssignedToID,
		Pagination:   input.Pagination,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its assignee, project, and activity trail.
func (s *TaskService) GetTask(taskID, userID uint64) (*models.Task, error) {
	decision, err := s.guard.Authorize(userID, TaskRef(taskID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	task, err := s.taskRepo.FindByID(taskID, "Assignee", "Project", "Project.Workspace", "ActivityLogs", "ActivityLogs.User")
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a task and its creation log entry in one transaction.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(input.Priority) {
		return nil, ErrInvalidTaskPriority
	}

	decision, err := s.guard.Authorize(input.CreatorID, ProjectRef(input.ProjectID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	if err := s.resolveAssignee(input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		AssignedToID: input.AssignedToID,
		ProjectID:    input.ProjectID,
		CreatedByID:  input.CreatorID,
	}

	entry := s.recorder.CreatedEntry(task, input.CreatorID)

	if err := s.taskRepo.CreateWithLog(task, entry); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// UpdateTask applies a partial update and appends the diff to the activity
// log. An update that changes no tracked field writes no log entry.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	decision, err := s.guard.Authorize(actorID, TaskRef(taskID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	before := *task

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssignedToID = nil
	} else if input.AssignedToID != nil {
		if err := s.resolveAssignee(input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = input.AssignedToID
	}

	changes := s.recorder.Changes(before, *task)
	entry := s.recorder.UpdatedEntry(task, actorID, changes)

	if err := s.taskRepo.UpdateWithLog(task, entry); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// DeleteTask removes a task. Deletion is gated on an owner or admin role in
// the enclosing workspace.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	decision, err := s.guard.Authorize(actorID, TaskRef(taskID), models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		if decision.Role == "" {
			return ErrNotWorkspaceMember
		}
		return ErrTaskPermissionDenied
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	entry := s.recorder.DeletedEntry(task, actorID)

	if err := s.taskRepo.DeleteWithLog(task, entry); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ListTaskLogs returns a task's activity trail, newest first.
func (s *TaskService) ListTaskLogs(taskID, userID uint64) ([]models.ActivityLog, error) {
	decision, err := s.guard.Authorize(userID, TaskRef(taskID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrNotWorkspaceMember
	}

	logs, err := s.activityRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task logs: %w", err)
	}

	return logs, nil
}

// resolveAssignee verifies the assignee user exists. Workspace membership is
// not a requirement for assignment.
func (s *TaskService) resolveAssignee(assigneeID *uint64) error {
	if assigneeID == nil {
		return nil
	}

	if _, err := s.userRepo.FindByID(*assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}

	return nil
}
