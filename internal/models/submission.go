package models

import "time"

// Submission is the raw text of a code submission, kept for duplicate detection.
type Submission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:128;index;not null" json:"username"`
	Code      string    `gorm:"type:text;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
