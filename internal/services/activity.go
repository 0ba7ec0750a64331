package services

import (
	"time"

	"github.com/workhive/workspace-api/internal/models"
)

// FieldChange captures a single tracked field transition in an update entry.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ActivityRecorder builds the audit trail entries for task mutations. The
// entries it produces are persisted by the task repository in the same
// transaction as the mutation they describe.
type ActivityRecorder struct{}

// NewActivityRecorder creates a new ActivityRecorder.
func NewActivityRecorder() *ActivityRecorder {
	return &ActivityRecorder{}
}

// Changes diffs the tracked fields between two task snapshots. Unchanged
// fields are absent from the result; an empty result means a no-op update
// that must not be logged.
func (r *ActivityRecorder) Changes(before, after models.Task) map[string]FieldChange {
	changes := make(map[string]FieldChange)

	if before.Title != after.Title {
		changes["title"] = FieldChange{From: before.Title, To: after.Title}
	}
	if before.Description != after.Description {
		changes["description"] = FieldChange{From: before.Description, To: after.Description}
	}
	if before.Status != after.Status {
		changes["status"] = FieldChange{From: before.Status, To: after.Status}
	}
	if before.Priority != after.Priority {
		changes["priority"] = FieldChange{From: before.Priority, To: after.Priority}
	}
	if !uint64PtrEqual(before.AssignedToID, after.AssignedToID) {
		changes["assigned_to"] = FieldChange{From: uint64PtrValue(before.AssignedToID), To: uint64PtrValue(after.AssignedToID)}
	}
	if !timePtrEqual(before.DueDate, after.DueDate) {
		changes["due_date"] = FieldChange{From: timePtrValue(before.DueDate), To: timePtrValue(after.DueDate)}
	}

	return changes
}

// CreatedEntry builds the log entry for a new task.
func (r *ActivityRecorder) CreatedEntry(task *models.Task, userID uint64) *models.ActivityLog {
	return &models.ActivityLog{
		TaskID: task.ID,
		UserID: userID,
		Action: models.ActivityActionCreated,
		Details: models.ActivityDetails{
			"title":    task.Title,
			"status":   task.Status,
			"priority": task.Priority,
		},
	}
}

// UpdatedEntry builds the log entry for a diffed update. Returns nil when no
// tracked field changed.
func (r *ActivityRecorder) UpdatedEntry(task *models.Task, userID uint64, changes map[string]FieldChange) *models.ActivityLog {
	if len(changes) == 0 {
		return nil
	}

	return &models.ActivityLog{
		TaskID: task.ID,
		UserID: userID,
		Action: models.ActivityActionUpdated,
		Details: models.ActivityDetails{
			"changes": changes,
		},
	}
}

// DeletedEntry builds the log entry for a task deletion.
func (r *ActivityRecorder) DeletedEntry(task *models.Task, userID uint64) *models.ActivityLog {
	return &models.ActivityLog{
		TaskID: task.ID,
		UserID: userID,
		Action: models.ActivityActionDeleted,
		Details: models.ActivityDetails{
			"title":      task.Title,
			"project_id": task.ProjectID,
		},
	}
}

func uint64PtrEqual(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uint64PtrValue(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timePtrValue(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
