package models

import "time"

// LeaderboardEntry records the score of one completed review.
type LeaderboardEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;index;not null" json:"name"`
	Score     int       `gorm:"not null" json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
