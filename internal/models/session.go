package models

import "time"

// Session is the ephemeral state of one login.
type Session struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	LoggedIn   bool      `json:"logged_in"`
	DailyUsage int       `json:"daily_usage"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsTeacher reports whether the session belongs to a teacher.
func (s Session) IsTeacher() bool {
	return NormalizeRole(s.Role) == RoleTeacher
}
