package constants

// Session and context keys shared between middleware and handlers.
const (
	SessionCookieName = "workorder_session"

	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyUserRole = "user_role"
	ContextKeyTask     = "task"
)

// Pagination bounds for list endpoints.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation limits.
const (
	MinPasswordLength   = 8
	MaxAIGeneratedTasks = 10
	MaxUploadBytes      = 5 << 20
)
