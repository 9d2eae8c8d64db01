package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/session"
)

const testSecret = "test-secret"

func newAuthFixture(users ...models.User) (AuthService, *session.MemoryStore) {
	store := session.NewMemoryStore(0)
	svc := NewAuthService(&userRepoStub{users: users}, store, validator.New(), AuthConfig{Secret: testSecret}, testLogger())
	return svc, store
}

func TestHashPasswordIsUnsaltedSHA256(t *testing.T) {
	require.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", HashPassword("password"))
	require.Equal(t, HashPassword("s3cret"), HashPassword("s3cret"))
	require.NotEqual(t, HashPassword("s3cret"), HashPassword("s3cret "))
	require.Len(t, HashPassword(""), 64)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthFixture(
		models.User{Username: "alice", PasswordHash: HashPassword("wonderland"), Role: models.RoleStudent},
		models.User{Username: "mrs_t", PasswordHash: strings.ToUpper(HashPassword("chalk")), Role: models.RoleTeacher},
	)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "alice", "wonderland")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	teacher, err := svc.Authenticate(ctx, "mrs_t", "chalk")
	require.NoError(t, err)
	require.True(t, teacher.IsTeacher())

	_, wrongPassword := svc.Authenticate(ctx, "alice", "Wonderland")
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)

	_, unknownUser := svc.Authenticate(ctx, "mallory", "wonderland")
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())

	_, caseMismatch := svc.Authenticate(ctx, "Alice", "wonderland")
	require.ErrorIs(t, caseMismatch, ErrInvalidCredentials)
}

func TestAuthenticatePropagatesStoreFailures(t *testing.T) {
	repo := &userRepoStub{err: errors.New("disk unavailable")}
	svc := NewAuthService(repo, session.NewMemoryStore(0), validator.New(), AuthConfig{Secret: testSecret}, testLogger())

	_, err := svc.Authenticate(context.Background(), "alice", "wonderland")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	svc, store := newAuthFixture(models.User{Username: "carol", PasswordHash: HashPassword("pw"), Role: "Student"})

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "carol", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "carol", resp.Session.Username)
	require.Equal(t, models.RoleStudent, resp.Session.Role)
	require.Equal(t, DefaultDailyLimit, resp.Session.Remaining)

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "carol", claims["sub"])

	sid, ok := claims["sid"].(string)
	require.True(t, ok)
	sess, err := store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.True(t, sess.LoggedIn)
	require.Zero(t, sess.DailyUsage)

	require.NoError(t, svc.Logout(context.Background(), sid))
	_, err = store.Get(context.Background(), sid)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(models.User{Username: "carol", PasswordHash: HashPassword("pw"), Role: models.RoleStudent})

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "carol", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "", Password: "pw"})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestDescribeSession(t *testing.T) {
	info := DescribeSession(models.Session{Username: "dan", Role: models.RoleStudent, DailyUsage: 7}, 5)
	require.Equal(t, 0, info.Remaining)
	require.Equal(t, 7, info.DailyUsage)

	info = DescribeSession(models.Session{Username: "dan", DailyUsage: 2}, 5)
	require.Equal(t, 3, info.Remaining)
}
