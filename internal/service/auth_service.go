package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/observability"
	"github.com/noah-isme/gema-review-api/internal/repository"
	"github.com/noah-isme/gema-review-api/internal/session"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword returns the lowercase hex SHA-256 digest of password.
// The digest is unsalted to stay compatible with existing credential tables.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// AuthConfig configures token issuance and session bookkeeping.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	DailyLimit int
}

// AuthService checks credentials and manages login sessions.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	users     repository.UserRepository
	sessions  session.Store
	validator *validator.Validate
	config    AuthConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, sessions session.Store, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = DefaultDailyLimit
	}
	return &authService{
		users:     users,
		sessions:  sessions,
		validator: validate,
		config:    cfg,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("load credentials: %w", err)
	}

	stored := strings.ToLower(strings.TrimSpace(user.PasswordHash))
	if subtle.ConstantTimeCompare([]byte(stored), []byte(HashPassword(password))) != 1 {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			observability.LoginAttempts().WithLabelValues("rejected").Inc()
			s.logger.Info().Str("username", req.Username).Msg("login rejected")
		} else {
			observability.LoginAttempts().WithLabelValues("error").Inc()
		}
		return dto.LoginResponse{}, err
	}

	now := s.now()
	sess := models.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Role:      models.NormalizeRole(user.Role),
		LoggedIn:  true,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("create session: %w", err)
	}

	expiresAt := now.Add(s.config.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sess.Username,
		"role": sess.Role,
		"sid":  sess.ID,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return dto.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	observability.LoginAttempts().WithLabelValues("accepted").Inc()
	s.logger.Info().Str("username", sess.Username).Str("role", sess.Role).Msg("login accepted")

	return dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		Session:   DescribeSession(sess, s.config.DailyLimit),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return session.ErrSessionNotFound
	}
	return s.sessions.Delete(ctx, sessionID)
}

// DescribeSession summarises a session and its remaining daily allowance.
func DescribeSession(sess models.Session, dailyLimit int) dto.SessionInfo {
	remaining := dailyLimit - sess.DailyUsage
	if remaining < 0 {
		remaining = 0
	}
	return dto.SessionInfo{
		Username:   sess.Username,
		Role:       sess.Role,
		DailyUsage: sess.DailyUsage,
		DailyLimit: dailyLimit,
		Remaining:  remaining,
	}
}
