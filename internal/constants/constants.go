package constants

// Session
const (
	SessionCookieName = "console_session"
	ContextKeyUserID  = "user_id"
	SessionKeyFlash   = "flash"
)

// Validation
const (
	MinPasswordLength = 8
	MaxTitleLength    = 200
)

// Dashboard
const RecentTaskCount = 5
