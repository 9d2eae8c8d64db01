package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-review-api/internal/models"
)

// Migrate creates the users, submissions and leaderboard tables when absent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Submission{}, &models.LeaderboardEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
