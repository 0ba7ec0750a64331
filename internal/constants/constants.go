package constants

import "time"

// Session
const (
	SessionCookieName = "workspace_session"
	ContextKeyUserID  = "user_id"
)

// Validation
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Invitations
const (
	// InvitationTTL bounds both the signed token and the stored row.
	InvitationTTL = 7 * 24 * time.Hour
)
