package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/repository"
	"github.com/noah-isme/gema-review-api/pkg/ai"
	"github.com/noah-isme/gema-review-api/pkg/notify"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type userRepoStub struct {
	users []models.User
	err   error
}

func (s *userRepoStub) List(ctx context.Context) ([]models.User, error) {
	return append([]models.User(nil), s.users...), s.err
}

func (s *userRepoStub) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *userRepoStub) Append(ctx context.Context, user *models.User) error {
	s.users = append(s.users, *user)
	return nil
}

type submissionRepoStub struct {
	mu        sync.Mutex
	items     []models.Submission
	appendErr error
	appended  int
}

func (s *submissionRepoStub) List(ctx context.Context) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Submission(nil), s.items...), nil
}

func (s *submissionRepoStub) Append(ctx context.Context, submission *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended++
	submission.ID = uint(len(s.items) + 1)
	s.items = append(s.items, *submission)
	return nil
}

type leaderboardRepoStub struct {
	mu        sync.Mutex
	items     []models.LeaderboardEntry
	appendErr error
	appended  int
	lists     int
}

func (s *leaderboardRepoStub) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	return append([]models.LeaderboardEntry(nil), s.items...), nil
}

func (s *leaderboardRepoStub) Append(ctx context.Context, entry *models.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended++
	entry.ID = uint(len(s.items) + 1)
	s.items = append(s.items, *entry)
	return nil
}

type reviewerStub struct {
	result ai.ReviewResult
	err    error
	calls  []ai.ReviewInput
}

func (s *reviewerStub) Review(ctx context.Context, input ai.ReviewInput) (ai.ReviewResult, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return ai.ReviewResult{}, s.err
	}
	return s.result, nil
}

type notifierStub struct {
	messages []notify.Message
	err      error
}

func (s *notifierStub) Send(ctx context.Context, msg notify.Message) error {
	s.messages = append(s.messages, msg)
	return s.err
}
