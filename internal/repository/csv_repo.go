package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/noah-isme/gema-review-api/internal/models"
)

// Flat-file table names inside the data directory.
const (
	UsersFile       = "users.csv"
	SubmissionsFile = "submissions.csv"
	LeaderboardFile = "leaderboard.csv"
)

// NewCSVRepositories opens the three flat-file tables under dir, creating any that are absent.
func NewCSVRepositories(dir string) (Repositories, error) {
	users := newCSVTable(filepath.Join(dir, UsersFile), "username", "password", "role")
	submissions := newCSVTable(filepath.Join(dir, SubmissionsFile), "username", "code")
	leaderboard := newCSVTable(filepath.Join(dir, LeaderboardFile), "name", "score")

	for _, table := range []*csvTable{users, submissions, leaderboard} {
		if err := table.ensure(); err != nil {
			return Repositories{}, err
		}
	}

	return Repositories{
		Users:       &csvUserRepository{table: users},
		Submissions: &csvSubmissionRepository{table: submissions},
		Leaderboard: &csvLeaderboardRepository{table: leaderboard},
	}, nil
}

type csvUserRepository struct {
	table *csvTable
}

func (r *csvUserRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.table.rows()
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for idx, row := range rows {
		users = append(users, models.User{
			ID:           uint(idx + 1),
			Username:     row[0],
			PasswordHash: row[1],
			Role:         models.NormalizeRole(row[2]),
		})
	}
	return users, nil
}

func (r *csvUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, user := range users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *csvUserRepository) Append(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := []string{user.Username, user.PasswordHash, models.NormalizeRole(user.Role)}
	return r.table.appendIf(row, func(rows [][]string) error {
		for _, existing := range rows {
			if existing[0] == user.Username {
				return ErrUserExists
			}
		}
		return nil
	})
}

type csvSubmissionRepository struct {
	table *csvTable
}

func (r *csvSubmissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.table.rows()
	if err != nil {
		return nil, err
	}

	submissions := make([]models.Submission, 0, len(rows))
	for idx, row := range rows {
		submissions = append(submissions, models.Submission{
			ID:       uint(idx + 1),
			Username: row[0],
			Code:     row[1],
		})
	}
	return submissions, nil
}

func (r *csvSubmissionRepository) Append(ctx context.Context, submission *models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.table.append([]string{submission.Username, submission.Code})
}

type csvLeaderboardRepository struct {
	table *csvTable
}

func (r *csvLeaderboardRepository) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.table.rows()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for idx, row := range rows {
		score, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid score %q: %w", LeaderboardFile, idx+2, row[1], ErrCorruptTable)
		}
		entries = append(entries, models.LeaderboardEntry{
			ID:    uint(idx + 1),
			Name:  row[0],
			Score: score,
		})
	}
	return entries, nil
}

func (r *csvLeaderboardRepository) Append(ctx context.Context, entry *models.LeaderboardEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.table.append([]string{entry.Name, strconv.Itoa(entry.Score)})
}
