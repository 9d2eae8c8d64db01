package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-review-api/internal/models"
)

type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository constructs a gorm-backed leaderboard repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error
	return entries, err
}

func (r *leaderboardRepository) Append(ctx context.Context, entry *models.LeaderboardEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// NewGormRepositories wires the three gorm repositories over one connection.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       NewUserRepository(db),
		Submissions: NewSubmissionRepository(db),
		Leaderboard: NewLeaderboardRepository(db),
	}
}
