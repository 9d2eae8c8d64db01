package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-review-api/internal/models"
)

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs the gorm-backed duplicate corpus.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// List returns the corpus oldest first so the earliest matching submission wins a duplicate check.
func (r *submissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// Append stores the raw text; rows are never updated afterwards.
func (r *submissionRepository) Append(ctx context.Context, submission *models.Submission) error {
	if submission == nil {
		return fmt.Errorf("submission must not be nil")
	}
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}
