package dto

import "time"

// LoginRequest captures the credentials submitted by the login form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=128"`
	Password string `json:"password" form:"password" validate:"required,max=256"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Session   SessionInfo `json:"session"`
}

// SessionInfo describes the caller's current session.
type SessionInfo struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	DailyUsage int    `json:"daily_usage"`
	DailyLimit int    `json:"daily_limit"`
	Remaining  int    `json:"remaining"`
}
