package session

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-review-api/internal/models"
)

// ErrSessionNotFound indicates the session expired, was logged out, or never existed.
var ErrSessionNotFound = errors.New("session not found")

// Store holds the ephemeral per-login state.
type Store interface {
	Create(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	IncrementUsage(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}
