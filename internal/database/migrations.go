package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for filtering and sorting
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_priority", "priority"},
		{"tasks", "idx_tasks_assigned_to_id", "assigned_to_id"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Workspace member lookups by user
		{"workspace_members", "idx_workspace_members_user_id", "user_id"},

		// Activity log timeline per task
		{"activity_logs", "idx_activity_logs_task_id", "task_id"},
		{"activity_logs", "idx_activity_logs_created_at", "created_at"},

		// Pending-invitation lookups by token
		{"invitations", "idx_invitations_status", "status"},

		// Project listings per workspace
		{"projects", "idx_projects_workspace_id", "workspace_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
