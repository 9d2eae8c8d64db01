package models

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User is a provisioned account allowed to log in.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Username     string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:64;not null" json:"-"`
	Role         string    `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsTeacher reports whether the user may view aggregate dashboard metrics.
func (u User) IsTeacher() bool {
	return NormalizeRole(u.Role) == RoleTeacher
}

// NormalizeRole lowercases and trims a role name.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleStudent, RoleTeacher:
		return true
	default:
		return false
	}
}
