package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ActivityAction string

const (
	ActivityActionCreated ActivityAction = "created"
	ActivityActionUpdated ActivityAction = "updated"
	ActivityActionDeleted ActivityAction = "deleted"
)

// ActivityDetails is the structured payload of a log entry, stored as a JSON
// text column.
type ActivityDetails map[string]any

// Value implements driver.Valuer.
func (d ActivityDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *ActivityDetails) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported activity details type %T", value)
	}
}

// ActivityLog is an append-only audit record of a task lifecycle event.
// Entries are never updated; they are deleted only alongside their task.
type ActivityLog struct {
	ID        uint64          `gorm:"primarykey" json:"id"`
	TaskID    uint64          `gorm:"not null" json:"task_id"`
	UserID    uint64          `gorm:"not null" json:"user_id"`
	Action    ActivityAction  `gorm:"type:varchar(20);not null" json:"action"`
	Details   ActivityDetails `gorm:"type:text" json:"details"`
	CreatedAt time.Time       `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
