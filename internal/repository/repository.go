package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-review-api/internal/models"
)

var (
	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists indicates a user with the same username is already stored.
	ErrUserExists = errors.New("user already exists")
)

// UserRepository exposes the credential table.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Append(ctx context.Context, user *models.User) error
}

// SubmissionRepository exposes the append-only corpus of text submissions.
type SubmissionRepository interface {
	List(ctx context.Context) ([]models.Submission, error)
	Append(ctx context.Context, submission *models.Submission) error
}

// LeaderboardRepository exposes the append-only leaderboard.
type LeaderboardRepository interface {
	List(ctx context.Context) ([]models.LeaderboardEntry, error)
	Append(ctx context.Context, entry *models.LeaderboardEntry) error
}

// Repositories groups the three record stores.
type Repositories struct {
	Users       UserRepository
	Submissions SubmissionRepository
	Leaderboard LeaderboardRepository
}
